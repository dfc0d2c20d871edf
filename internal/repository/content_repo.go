package repository

import (
	"database/sql"
	"fmt"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// ContentRepository handles sponsors, vendors and study resources
type ContentRepository struct {
	db database.DBTX
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

// CreateSponsor inserts a sponsor
func (r *ContentRepository) CreateSponsor(s *models.Sponsor) error {
	query := "INSERT INTO sponsors (name, tier, website, logo_url, contribution_cents) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, s.Name, s.Tier, s.Website, s.LogoURL, s.ContributionCents)
	if err != nil {
		return fmt.Errorf("failed to create sponsor: %w", err)
	}
	s.ID = id
	s.CreatedAt = time.Now()
	return nil
}

// GetSponsor retrieves a sponsor by ID
func (r *ContentRepository) GetSponsor(id int64) (*models.Sponsor, error) {
	query := "SELECT id, name, tier, website, logo_url, contribution_cents, created_at FROM sponsors WHERE id = ?"
	s := &models.Sponsor{}
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.Name, &s.Tier, &s.Website, &s.LogoURL, &s.ContributionCents, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sponsor: %w", err)
	}
	return s, nil
}

// ListSponsors returns sponsors by contribution, largest first
func (r *ContentRepository) ListSponsors() ([]models.Sponsor, error) {
	query := `
		SELECT id, name, tier, website, logo_url, contribution_cents, created_at
		FROM sponsors
		ORDER BY contribution_cents DESC, name ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sponsors: %w", err)
	}
	defer rows.Close()

	sponsors := []models.Sponsor{}
	for rows.Next() {
		var s models.Sponsor
		if err := rows.Scan(&s.ID, &s.Name, &s.Tier, &s.Website, &s.LogoURL, &s.ContributionCents, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sponsor: %w", err)
		}
		sponsors = append(sponsors, s)
	}
	return sponsors, rows.Err()
}

// UpdateSponsor saves sponsor edits
func (r *ContentRepository) UpdateSponsor(s *models.Sponsor) error {
	query := "UPDATE sponsors SET name = ?, tier = ?, website = ?, logo_url = ?, contribution_cents = ? WHERE id = ?"
	if _, err := r.db.Exec(query, s.Name, s.Tier, s.Website, s.LogoURL, s.ContributionCents, s.ID); err != nil {
		return fmt.Errorf("failed to update sponsor: %w", err)
	}
	return nil
}

// DeleteSponsor removes a sponsor
func (r *ContentRepository) DeleteSponsor(id int64) error {
	if _, err := r.db.Exec("DELETE FROM sponsors WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete sponsor: %w", err)
	}
	return nil
}

// CreateVendor inserts a vendor
func (r *ContentRepository) CreateVendor(v *models.Vendor) error {
	query := "INSERT INTO vendors (name, service, contact_email, phone) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, v.Name, v.Service, v.ContactEmail, v.Phone)
	if err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	v.ID = id
	v.CreatedAt = time.Now()
	return nil
}

// GetVendor retrieves a vendor by ID
func (r *ContentRepository) GetVendor(id int64) (*models.Vendor, error) {
	query := "SELECT id, name, service, contact_email, phone, created_at FROM vendors WHERE id = ?"
	v := &models.Vendor{}
	err := r.db.QueryRow(query, id).Scan(&v.ID, &v.Name, &v.Service, &v.ContactEmail, &v.Phone, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return v, nil
}

// ListVendors returns vendors by name
func (r *ContentRepository) ListVendors() ([]models.Vendor, error) {
	rows, err := r.db.Query("SELECT id, name, service, contact_email, phone, created_at FROM vendors ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	vendors := []models.Vendor{}
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Service, &v.ContactEmail, &v.Phone, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// UpdateVendor saves vendor edits
func (r *ContentRepository) UpdateVendor(v *models.Vendor) error {
	query := "UPDATE vendors SET name = ?, service = ?, contact_email = ?, phone = ? WHERE id = ?"
	if _, err := r.db.Exec(query, v.Name, v.Service, v.ContactEmail, v.Phone, v.ID); err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	return nil
}

// DeleteVendor removes a vendor
func (r *ContentRepository) DeleteVendor(id int64) error {
	if _, err := r.db.Exec("DELETE FROM vendors WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	return nil
}

// CreateResource inserts a study resource
func (r *ContentRepository) CreateResource(res *models.Resource) error {
	query := "INSERT INTO resources (title, body, grade, url) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, res.Title, res.Body, res.Grade, res.URL)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	res.ID = id
	res.CreatedAt = time.Now()
	return nil
}

// GetResource retrieves a resource by ID
func (r *ContentRepository) GetResource(id int64) (*models.Resource, error) {
	query := "SELECT id, title, body, grade, url, created_at FROM resources WHERE id = ?"
	res := &models.Resource{}
	err := r.db.QueryRow(query, id).Scan(&res.ID, &res.Title, &res.Body, &res.Grade, &res.URL, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return res, nil
}

// ListResources returns resources newest first. Zero grade lists all;
// otherwise resources for that grade and general ones are returned.
func (r *ContentRepository) ListResources(grade models.Grade) ([]models.Resource, error) {
	query := "SELECT id, title, body, grade, url, created_at FROM resources"
	var args []interface{}
	if grade != 0 {
		query += " WHERE grade = ? OR grade IS NULL"
		args = append(args, grade)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Title, &res.Body, &res.Grade, &res.URL, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

// UpdateResource saves resource edits
func (r *ContentRepository) UpdateResource(res *models.Resource) error {
	query := "UPDATE resources SET title = ?, body = ?, grade = ?, url = ? WHERE id = ?"
	if _, err := r.db.Exec(query, res.Title, res.Body, res.Grade, res.URL, res.ID); err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

// DeleteResource removes a resource
func (r *ContentRepository) DeleteResource(id int64) error {
	if _, err := r.db.Exec("DELETE FROM resources WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return nil
}
