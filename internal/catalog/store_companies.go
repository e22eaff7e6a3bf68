package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"romcat/internal/slug"
)

// ResolveCompany returns the company a name or alias refers to, creating
// the company when nothing matches. Alias lookup is case-insensitive, so
// "SQUARESOFT" and "Squaresoft" land on the same row. The looked-up name
// is always recorded as an alias of the resolved company.
func (o Ops) ResolveCompany(ctx context.Context, name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var companyID string
	row := o.q.QueryRowContext(ctx,
		"SELECT company_id FROM company_aliases WHERE alias = ?", name)
	err := row.Scan(&companyID)
	switch {
	case err == nil:
		return o.GetCompany(ctx, companyID)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, storeErr("resolve company", name, err)
	}

	companyID = slug.CompanyID(name)
	if _, err := o.q.ExecContext(ctx, `
        INSERT INTO companies (id, name, country) VALUES (?, ?, '')
        ON CONFLICT(id) DO NOTHING`,
		companyID, name); err != nil {
		return nil, storeErr("resolve company", "insert "+name, err)
	}
	if err := o.AddCompanyAlias(ctx, companyID, name); err != nil {
		return nil, err
	}
	return o.GetCompany(ctx, companyID)
}

// AddCompanyAlias records an alias for an existing company.
func (o Ops) AddCompanyAlias(ctx context.Context, companyID, alias string) error {
	_, err := o.q.ExecContext(ctx, `
        INSERT INTO company_aliases (company_id, alias) VALUES (?, ?)
        ON CONFLICT(alias) DO NOTHING`,
		companyID, alias)
	if err != nil {
		return storeErr("add company alias", alias, err)
	}
	return nil
}

// GetCompany loads one company with its aliases.
func (o Ops) GetCompany(ctx context.Context, id string) (*Company, error) {
	var c Company
	row := o.q.QueryRowContext(ctx, "SELECT id, name, country FROM companies WHERE id = ?", id)
	if err := row.Scan(&c.ID, &c.Name, &c.Country); err != nil {
		return nil, notFoundOrStore("get company", id, err)
	}

	rows, err := o.q.QueryContext(ctx,
		"SELECT alias FROM company_aliases WHERE company_id = ? ORDER BY alias", id)
	if err != nil {
		return nil, storeErr("get company", "load aliases", err)
	}
	defer rows.Close()
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, storeErr("get company", "scan alias", err)
		}
		c.Aliases = append(c.Aliases, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get company", "iterate aliases", err)
	}
	return &c, nil
}
