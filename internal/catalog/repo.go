package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repo struct{ DB *pgxpool.Pool }

type Filter struct {
	Query        string // substring match di nama produk (case-insensitive)
	CategorySlug string
	Page         int // 1-based
	PageSize     int
}

const DefaultPageSize = 12

const productCols = `id, category_id, name, slug, description, price_cents, currency,
	image, is_preorder, product_type, available, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.PriceCents, &p.Currency, &p.Image, &p.IsPreorder, &p.ProductType,
		&p.Available, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := r.DB.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE slug=$1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

// ListProducts: hanya produk available, terbaru dulu, paging 12/halaman.
// Filter nama pakai ILIKE substring; filter kategori pakai slug.
func (r *Repo) ListProducts(ctx context.Context, f Filter) (products []Product, total int, err error) {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	where := []string{"p.available = TRUE"}
	args := []any{}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, "p.name ILIKE $"+strconv.Itoa(len(args)))
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, "p.category_id = (SELECT id FROM categories WHERE slug = $"+strconv.Itoa(len(args))+")")
	}
	cond := strings.Join(where, " AND ")

	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	q := `SELECT ` + productCols + ` FROM products p WHERE ` + cond +
		` ORDER BY p.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// Featured: N produk available terbaru utk halaman depan.
func (r *Repo) Featured(ctx context.Context, n int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products
		WHERE available = TRUE ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products
		WHERE slug=$1 AND available = TRUE`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) GetProductByID(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// CreateCategory: slug diturunkan dari nama kalau kosong.
func (r *Repo) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	_, err := r.DB.Exec(ctx, `INSERT INTO categories(id, name, slug) VALUES ($1,$2,$3)`,
		c.ID, c.Name, c.Slug)
	return c, err
}

// CreateProduct: slug unik di seluruh tabel products; tabrakan dapat
// suffix numerik ("charizard", "charizard-1", ...).
func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Slug == "" {
		s, err := DedupSlug(Slugify(p.Name), func(candidate string) (bool, error) {
			var n int
			err := r.DB.QueryRow(ctx,
				`SELECT COUNT(*) FROM products WHERE slug=$1 AND id <> $2`, candidate, p.ID).Scan(&n)
			return n > 0, err
		})
		if err != nil {
			return Product{}, err
		}
		p.Slug = s
	}
	if p.ProductType == "" {
		p.ProductType = TypeSingle
	}
	if p.Currency == "" {
		p.Currency = "$"
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, category_id, name, slug, description, price_cents, currency,
			image, is_preorder, product_type, available, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.PriceCents, p.Currency,
		p.Image, p.IsPreorder, p.ProductType, p.Available, p.Stock)
	return p, err
}

