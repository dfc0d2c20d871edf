package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/validation"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// PaymentRequest creates or edits a school payment
type PaymentRequest struct {
	SchoolID    int64                `json:"schoolId" validate:"required,gt=0"`
	AmountCents int                  `json:"amountCents" validate:"gt=0"`
	Currency    string               `json:"currency" validate:"omitempty,len=3,alpha"`
	Reference   string               `json:"reference" validate:"max=200"`
	Status      models.PaymentStatus `json:"status" validate:"omitempty,oneof=pending paid refunded"`
}

// SponsorRequest creates or edits a sponsor
type SponsorRequest struct {
	Name              string             `json:"name" validate:"notblank,max=200"`
	Tier              models.SponsorTier `json:"tier" validate:"oneof=gold silver bronze"`
	Website           string             `json:"website" validate:"omitempty,url"`
	LogoURL           string             `json:"logoUrl" validate:"omitempty,url"`
	ContributionCents int                `json:"contributionCents" validate:"gte=0"`
}

// VendorRequest creates or edits a vendor
type VendorRequest struct {
	Name         string `json:"name" validate:"notblank,max=200"`
	Service      string `json:"service" validate:"notblank,max=200"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=50"`
}

// ResourceRequest creates or edits a study resource
type ResourceRequest struct {
	Title string        `json:"title" validate:"notblank,max=200"`
	Body  string        `json:"body"`
	Grade *models.Grade `json:"grade" validate:"omitempty,grade"`
	URL   string        `json:"url" validate:"omitempty,url"`
}

// ContentService manages payments, sponsors, vendors and study resources
type ContentService struct {
	paymentRepo *repository.PaymentRepository
	contentRepo *repository.ContentRepository
	schoolRepo  *repository.SchoolRepository
	markdown    goldmark.Markdown
	now         func() time.Time
}

// NewContentService creates a content service
func NewContentService(paymentRepo *repository.PaymentRepository, contentRepo *repository.ContentRepository, schoolRepo *repository.SchoolRepository) *ContentService {
	return &ContentService{
		paymentRepo: paymentRepo,
		contentRepo: contentRepo,
		schoolRepo:  schoolRepo,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		now:         time.Now,
	}
}

// Payments

// ListPayments returns payments, newest first. Zero schoolID lists every school.
func (s *ContentService) ListPayments(schoolID int64) ([]models.Payment, error) {
	payments, err := s.paymentRepo.ListPayments(schoolID)
	if err != nil {
		return nil, storeError("list payments", err)
	}
	return payments, nil
}

func (s *ContentService) getPayment(id int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPayment(id)
	if err != nil {
		return nil, storeError("get payment", err)
	}
	if payment == nil {
		return nil, notFound("payment", id)
	}
	return payment, nil
}

// applyPayment copies req onto p. paidAt is stamped on the transition to paid.
func (s *ContentService) applyPayment(p *models.Payment, req PaymentRequest) {
	p.SchoolID = req.SchoolID
	p.AmountCents = req.AmountCents
	p.Currency = strings.ToUpper(req.Currency)
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Reference = strings.TrimSpace(req.Reference)

	status := req.Status
	if status == "" {
		status = models.PaymentPending
	}
	if status == models.PaymentPaid && p.Status != models.PaymentPaid {
		now := s.now()
		p.PaidAt = &now
	}
	if status == models.PaymentPending {
		p.PaidAt = nil
	}
	p.Status = status
}

// CreatePayment records a payment for an existing school
func (s *ContentService) CreatePayment(req PaymentRequest) (*models.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	school, err := s.schoolRepo.GetSchoolByID(req.SchoolID)
	if err != nil {
		return nil, storeError("get school", err)
	}
	if school == nil {
		return nil, validation.Errors{"schoolId": "schoolId does not match a school"}
	}

	payment := &models.Payment{}
	s.applyPayment(payment, req)
	if err := s.paymentRepo.CreatePayment(payment); err != nil {
		return nil, storeError("create payment", err)
	}
	return payment, nil
}

// UpdatePayment edits a payment. The school cannot change.
func (s *ContentService) UpdatePayment(id int64, req PaymentRequest) (*models.Payment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	payment, err := s.getPayment(id)
	if err != nil {
		return nil, err
	}
	req.SchoolID = payment.SchoolID

	s.applyPayment(payment, req)
	if err := s.paymentRepo.UpdatePayment(payment); err != nil {
		return nil, storeError("update payment", err)
	}
	return payment, nil
}

// DeletePayment removes a payment
func (s *ContentService) DeletePayment(id int64) error {
	if _, err := s.getPayment(id); err != nil {
		return err
	}
	if err := s.paymentRepo.DeletePayment(id); err != nil {
		return storeError("delete payment", err)
	}
	return nil
}

// Sponsors

func (s *ContentService) ListSponsors() ([]models.Sponsor, error) {
	sponsors, err := s.contentRepo.ListSponsors()
	if err != nil {
		return nil, storeError("list sponsors", err)
	}
	return sponsors, nil
}

func (s *ContentService) CreateSponsor(req SponsorRequest) (*models.Sponsor, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	sponsor := &models.Sponsor{
		Name:              strings.TrimSpace(req.Name),
		Tier:              req.Tier,
		Website:           req.Website,
		LogoURL:           req.LogoURL,
		ContributionCents: req.ContributionCents,
	}
	if err := s.contentRepo.CreateSponsor(sponsor); err != nil {
		return nil, storeError("create sponsor", err)
	}
	return sponsor, nil
}

func (s *ContentService) UpdateSponsor(id int64, req SponsorRequest) (*models.Sponsor, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	sponsor, err := s.contentRepo.GetSponsor(id)
	if err != nil {
		return nil, storeError("get sponsor", err)
	}
	if sponsor == nil {
		return nil, notFound("sponsor", id)
	}

	sponsor.Name = strings.TrimSpace(req.Name)
	sponsor.Tier = req.Tier
	sponsor.Website = req.Website
	sponsor.LogoURL = req.LogoURL
	sponsor.ContributionCents = req.ContributionCents
	if err := s.contentRepo.UpdateSponsor(sponsor); err != nil {
		return nil, storeError("update sponsor", err)
	}
	return sponsor, nil
}

func (s *ContentService) DeleteSponsor(id int64) error {
	sponsor, err := s.contentRepo.GetSponsor(id)
	if err != nil {
		return storeError("get sponsor", err)
	}
	if sponsor == nil {
		return notFound("sponsor", id)
	}
	if err := s.contentRepo.DeleteSponsor(id); err != nil {
		return storeError("delete sponsor", err)
	}
	return nil
}

// Vendors

func (s *ContentService) ListVendors() ([]models.Vendor, error) {
	vendors, err := s.contentRepo.ListVendors()
	if err != nil {
		return nil, storeError("list vendors", err)
	}
	return vendors, nil
}

func (s *ContentService) CreateVendor(req VendorRequest) (*models.Vendor, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	vendor := &models.Vendor{
		Name:         strings.TrimSpace(req.Name),
		Service:      strings.TrimSpace(req.Service),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.contentRepo.CreateVendor(vendor); err != nil {
		return nil, storeError("create vendor", err)
	}
	return vendor, nil
}

func (s *ContentService) UpdateVendor(id int64, req VendorRequest) (*models.Vendor, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	vendor, err := s.contentRepo.GetVendor(id)
	if err != nil {
		return nil, storeError("get vendor", err)
	}
	if vendor == nil {
		return nil, notFound("vendor", id)
	}

	vendor.Name = strings.TrimSpace(req.Name)
	vendor.Service = strings.TrimSpace(req.Service)
	vendor.ContactEmail = strings.TrimSpace(req.ContactEmail)
	vendor.Phone = strings.TrimSpace(req.Phone)
	if err := s.contentRepo.UpdateVendor(vendor); err != nil {
		return nil, storeError("update vendor", err)
	}
	return vendor, nil
}

func (s *ContentService) DeleteVendor(id int64) error {
	vendor, err := s.contentRepo.GetVendor(id)
	if err != nil {
		return storeError("get vendor", err)
	}
	if vendor == nil {
		return notFound("vendor", id)
	}
	if err := s.contentRepo.DeleteVendor(id); err != nil {
		return storeError("delete vendor", err)
	}
	return nil
}

// Resources

// RenderMarkdown converts a resource body to HTML
func (s *ContentService) RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func (s *ContentService) withHTML(res *models.Resource) error {
	html, err := s.RenderMarkdown(res.Body)
	if err != nil {
		return err
	}
	res.BodyHTML = html
	return nil
}

// ListResources returns resources for a grade plus general ones. Grade 0 lists all.
func (s *ContentService) ListResources(grade models.Grade) ([]models.Resource, error) {
	if grade != 0 {
		if err := validation.Field("grade", grade, "grade"); err != nil {
			return nil, err
		}
	}
	resources, err := s.contentRepo.ListResources(grade)
	if err != nil {
		return nil, storeError("list resources", err)
	}
	for i := range resources {
		if err := s.withHTML(&resources[i]); err != nil {
			return nil, err
		}
	}
	return resources, nil
}

// GetResource returns a resource with its rendered body
func (s *ContentService) GetResource(id int64) (*models.Resource, error) {
	res, err := s.contentRepo.GetResource(id)
	if err != nil {
		return nil, storeError("get resource", err)
	}
	if res == nil {
		return nil, notFound("resource", id)
	}
	if err := s.withHTML(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ContentService) CreateResource(req ResourceRequest) (*models.Resource, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	res := &models.Resource{
		Title: strings.TrimSpace(req.Title),
		Body:  req.Body,
		Grade: req.Grade,
		URL:   strings.TrimSpace(req.URL),
	}
	if err := s.contentRepo.CreateResource(res); err != nil {
		return nil, storeError("create resource", err)
	}
	if err := s.withHTML(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ContentService) UpdateResource(id int64, req ResourceRequest) (*models.Resource, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	res, err := s.contentRepo.GetResource(id)
	if err != nil {
		return nil, storeError("get resource", err)
	}
	if res == nil {
		return nil, notFound("resource", id)
	}

	res.Title = strings.TrimSpace(req.Title)
	res.Body = req.Body
	res.Grade = req.Grade
	res.URL = strings.TrimSpace(req.URL)
	if err := s.contentRepo.UpdateResource(res); err != nil {
		return nil, storeError("update resource", err)
	}
	if err := s.withHTML(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ContentService) DeleteResource(id int64) error {
	res, err := s.contentRepo.GetResource(id)
	if err != nil {
		return storeError("get resource", err)
	}
	if res == nil {
		return notFound("resource", id)
	}
	if err := s.contentRepo.DeleteResource(id); err != nil {
		return storeError("delete resource", err)
	}
	return nil
}
