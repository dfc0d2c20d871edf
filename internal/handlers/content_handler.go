package handlers

import (
	"net/http"

	"spellingbee/internal/models"
	"spellingbee/internal/service"
)

// ContentHandler serves payments, sponsors, vendors and study resources
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// Payments

func (h *ContentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := queryInt(w, r, "schoolId")
	if !ok {
		return
	}
	payments, err := h.contentService.ListPayments(int64(schoolID))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (h *ContentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req service.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	payment, err := h.contentService.CreatePayment(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

func (h *ContentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	payment, err := h.contentService.UpdatePayment(id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

func (h *ContentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeletePayment(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sponsors

func (h *ContentHandler) ListSponsors(w http.ResponseWriter, r *http.Request) {
	sponsors, err := h.contentService.ListSponsors()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sponsors)
}

func (h *ContentHandler) CreateSponsor(w http.ResponseWriter, r *http.Request) {
	var req service.SponsorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sponsor, err := h.contentService.CreateSponsor(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sponsor)
}

func (h *ContentHandler) UpdateSponsor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.SponsorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sponsor, err := h.contentService.UpdateSponsor(id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sponsor)
}

func (h *ContentHandler) DeleteSponsor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteSponsor(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vendors

func (h *ContentHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.contentService.ListVendors()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, vendors)
}

func (h *ContentHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req service.VendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	vendor, err := h.contentService.CreateVendor(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, vendor)
}

func (h *ContentHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.VendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	vendor, err := h.contentService.UpdateVendor(id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

func (h *ContentHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteVendor(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resources

// ListResources returns resources for ?grade= plus general ones, with rendered HTML
func (h *ContentHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	grade, ok := queryInt(w, r, "grade")
	if !ok {
		return
	}
	resources, err := h.contentService.ListResources(models.Grade(grade))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resources)
}

func (h *ContentHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resource, err := h.contentService.GetResource(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resource)
}

func (h *ContentHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req service.ResourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resource, err := h.contentService.CreateResource(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resource)
}

func (h *ContentHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.ResourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resource, err := h.contentService.UpdateResource(id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resource)
}

func (h *ContentHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteResource(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
