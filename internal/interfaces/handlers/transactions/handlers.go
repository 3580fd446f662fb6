package transactions

import (
	"bytes"
	"time"

	"tidechain-backend/internal/application/certificates"
	txsvc "tidechain-backend/internal/application/transactions"
	"tidechain-backend/internal/middleware"
	"tidechain-backend/internal/pkg/response"
	"tidechain-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *txsvc.Service
	Now     func() time.Time
}

// Purchase POST /api/v1/transactions (buyer): buy credits from a verified project.
func (h *Handlers) Purchase(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in txsvc.PurchaseInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(in); err != nil {
		return response.FromError(c, err)
	}
	receipt, err := h.Service.Purchase(c.UserContext(), claims.UserID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Credits purchased successfully", receipt)
}

// My GET /api/v1/transactions/my (buyer): the caller's purchases, newest first.
func (h *Handlers) My(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListByBuyer(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions fetched successfully", list)
}

// Certificate GET /api/v1/transactions/:id/certificate: printable HTML certificate.
func (h *Handlers) Certificate(c *fiber.Ctx) error {
	cert, err := h.certificate(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var buf bytes.Buffer
	if err := certificates.RenderHTML(&buf, cert); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// CertificatePDF GET /api/v1/transactions/:id/certificate.pdf: the same certificate as a PDF download.
func (h *Handlers) CertificatePDF(c *fiber.Ctx) error {
	cert, err := h.certificate(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var buf bytes.Buffer
	if err := certificates.RenderPDF(&buf, cert); err != nil {
		log.Error().Str("trace_id", middleware.GetTraceID(c)).Str("certificate_id", cert.CertificateID).Err(err).Msg("certificate pdf render failed")
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+cert.CertificateID+`.pdf"`)
	return c.Send(buf.Bytes())
}

func (h *Handlers) certificate(c *fiber.Ctx) (certificates.Certificate, error) {
	v, err := h.Service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return certificates.Certificate{}, err
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return certificates.FromTransaction(v, now()), nil
}
