package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/purchases-api/internal/application/dto"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

// decoder envuelve r según el charset declarado.
func decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1251", "cp1251":
		return transform.NewReader(r, charmap.Windows1251.NewDecoder()), nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado: %q", charset)
	}
}

// parseStockCSV lee filas product_id, store_id, quantity. Los errores indican la línea.
func parseStockCSV(r io.Reader, charset string, sep rune) ([]dto.SetStockRequest, error) {
	in, err := decoder(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(in)
	cr.Comma = sep
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []dto.SetStockRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		productID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			if line == 1 {
				continue // cabecera
			}
			return nil, fmt.Errorf("línea %d: product_id %q inválido", line, rec[0])
		}
		storeID, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("línea %d: store_id %q inválido", line, rec[1])
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: quantity %q inválida", line, rec[2])
		}
		if productID <= 0 || storeID <= 0 || qty < 0 {
			return nil, fmt.Errorf("línea %d: valores fuera de rango", line)
		}
		out = append(out, dto.SetStockRequest{ProductID: productID, StoreID: storeID, Quantity: qty})
	}
	return out, nil
}

type stockSetter interface {
	Set(ctx context.Context, in dto.SetStockRequest) (*dto.StockResponse, error)
}

// importRows aplica las filas en orden y se detiene en el primer error.
func importRows(ctx context.Context, uc stockSetter, rows []dto.SetStockRequest, log *logger.Logger) error {
	for i, row := range rows {
		if _, err := uc.Set(ctx, row); err != nil {
			return fmt.Errorf("fila %d (producto %d, tienda %d): %w", i+1, row.ProductID, row.StoreID, err)
		}
		log.Debug().Int64("product_id", row.ProductID).Int64("store_id", row.StoreID).Int("quantity", row.Quantity).Msg("stock fijado")
	}
	return nil
}
