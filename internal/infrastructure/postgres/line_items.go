package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// itemTable describe una tabla de líneas (estimate_items / invoice_items).
type itemTable struct {
	name      string
	parentCol string
}

var (
	estimateItems = itemTable{name: "estimate_items", parentCol: "estimate_id"}
	invoiceItems  = itemTable{name: "invoice_items", parentCol: "invoice_id"}
)

// replaceItems borra las líneas del documento e inserta las nuevas en orden.
func replaceItems(ctx context.Context, q Querier, t itemTable, documentID string, items []entity.LineItem) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+t.name+` WHERE `+t.parentCol+` = $1`, documentID); err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	insert := `
		INSERT INTO ` + t.name + ` (id, ` + t.parentCol + `, position, description, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.DocumentID = documentID
		if it.Position == 0 {
			it.Position = i + 1
		}
		if _, err := q.Exec(ctx, insert,
			it.ID, documentID, it.Position, it.Description, it.Quantity, it.UnitPrice, it.Total,
		); err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}
	return nil
}

// listItems devuelve las líneas por posición.
func listItems(ctx context.Context, q Querier, t itemTable, documentID string) ([]entity.LineItem, error) {
	query := `
		SELECT id, ` + t.parentCol + `, position, description, quantity, unit_price, total
		FROM ` + t.name + ` WHERE ` + t.parentCol + ` = $1 ORDER BY position, id`
	rows, err := q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()
	list := []entity.LineItem{}
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// maxNumber lee el mayor contador de los números "<prefix>-<dígitos>" de la tabla.
func maxNumber(ctx context.Context, q Querier, table, prefix string) (int64, error) {
	pattern := "^" + regexp.QuoteMeta(prefix) + "-([0-9]+)$"
	query := `
		SELECT COALESCE(MAX(CAST(substring(number FROM $1) AS BIGINT)), 0)
		FROM ` + table + ` WHERE number ~ $1`
	var n int64
	if err := q.QueryRow(ctx, query, pattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("max number %s: %w", table, err)
	}
	return n, nil
}

// listWhere arma el WHERE de los listados filtrados por cliente y estado.
type listWhere struct {
	conds []string
	args  []any
}

func (w *listWhere) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *listWhere) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page añade LIMIT/OFFSET y devuelve el sufijo.
func (w *listWhere) page(p repository.Page) string {
	if p.Limit <= 0 {
		return ""
	}
	w.args = append(w.args, p.Limit, p.Offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}
