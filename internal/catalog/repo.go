package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListActiveVendors(ctx context.Context) ([]Vendor, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, whatsapp_contact, is_active, created_at
		FROM vendors WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.WhatsAppContact, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) ListActiveCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, is_active, created_at
		FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProducts returns active products, newest first, with the owning vendor
// and category loaded alongside.
func (r *Repo) ListProducts(ctx context.Context, f Filter) ([]Product, error) {
	q := `
		SELECT p.id, p.vendor_id, p.category_id, p.name, p.description, p.price,
		       p.image_url, p.is_active, p.created_at, p.updated_at,
		       v.id, v.name, v.description, v.whatsapp_contact, v.is_active, v.created_at,
		       c.id, c.name, c.description, c.is_active, c.created_at
		FROM products p
		JOIN vendors v ON v.id = p.vendor_id
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active`
	args := []any{}
	if f.VendorID != "" {
		args = append(args, f.VendorID)
		q += fmt.Sprintf(" AND p.vendor_id = $%d", len(args))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		q += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	q += " ORDER BY p.created_at DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var v Vendor
		var c Category
		if err := rows.Scan(
			&p.ID, &p.VendorID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
			&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&v.ID, &v.Name, &v.Description, &v.WhatsAppContact, &v.IsActive, &v.CreatedAt,
			&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Vendor, p.Category = &v, &c
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct loads one active product with its vendor, used when snapshotting
// a cart line.
func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	var v Vendor
	err := r.DB.QueryRow(ctx, `
		SELECT p.id, p.vendor_id, p.category_id, p.name, p.description, p.price,
		       p.image_url, p.is_active, p.created_at, p.updated_at,
		       v.id, v.name, v.description, v.whatsapp_contact, v.is_active, v.created_at
		FROM products p
		JOIN vendors v ON v.id = p.vendor_id
		WHERE p.id = $1 AND p.is_active`, id).Scan(
		&p.ID, &p.VendorID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&v.ID, &v.Name, &v.Description, &v.WhatsAppContact, &v.IsActive, &v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.Vendor = &v
	return p, nil
}

func (r *Repo) CountProductsByVendor(ctx context.Context, vendorID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE vendor_id = $1 AND is_active`, vendorID).Scan(&n)
	return n, err
}

func (r *Repo) CountProductsByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1 AND is_active`, categoryID).Scan(&n)
	return n, err
}
