package invoice

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/core/id"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/domain/seller"
	"quickinvoice/internal/domain/share"
	"quickinvoice/pkg/logger"
)

var tracer = otel.Tracer("quickinvoice/invoice")

// Renderer turns a model into a printable artifact.
type Renderer interface {
	Render(m *DocumentModel) ([]byte, error)
	ContentType() string
	Extension() string
}

// SummaryRenderer turns a model into plain text for message composition.
type SummaryRenderer interface {
	Render(m *DocumentModel) (string, error)
}

// OrderReader loads a seller's order.
type OrderReader interface {
	GetByID(ctx context.Context, sellerID string, orderID id.ID) (*order.Order, error)
}

// SellerFinder loads a seller profile; nil means no profile.
type SellerFinder interface {
	Find(ctx context.Context, sellerID string) (*seller.Seller, error)
}

// Result is a generated invoice.
type Result struct {
	Model       *DocumentModel
	Document    []byte
	ContentType string
	Filename    string
	DataURL     string
	Summary     string
	Share       share.Share
	Warnings    []IntegrityWarning
}

// Service loads an order and its seller, builds the model and renders it.
type Service struct {
	orders   OrderReader
	sellers  SellerFinder
	renderer Renderer
	text     SummaryRenderer
	share    *share.Builder
	opts     Options
}

// ServiceConfig configures the invoice service.
type ServiceConfig struct {
	Orders   OrderReader
	Sellers  SellerFinder
	Renderer Renderer
	Text     SummaryRenderer
	Share    *share.Builder
	Options  Options
}

// NewService creates a new invoice service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		orders:   cfg.Orders,
		sellers:  cfg.Sellers,
		renderer: cfg.Renderer,
		text:     cfg.Text,
		share:    cfg.Share,
		opts:     cfg.Options.withDefaults(),
	}
}

// Generate produces the invoice for orderID as of renderedAt.
// Integrity warnings are logged and returned; they never fail the call.
func (s *Service) Generate(ctx context.Context, sellerID string, orderID id.ID, renderedAt time.Time) (*Result, error) {
	ctx, span := tracer.Start(ctx, "invoice.generate",
		trace.WithAttributes(
			attribute.String("seller.id", sellerID),
			attribute.String("order.id", orderID.String()),
		))
	defer span.End()

	res, err := s.generate(ctx, sellerID, orderID, renderedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.number", res.Model.OrderNumber),
		attribute.Bool("seller.premium_active", res.Model.PremiumActive),
		attribute.Int("invoice.warnings", len(res.Warnings)),
		attribute.Int("invoice.bytes", len(res.Document)),
	)
	return res, nil
}

func (s *Service) generate(ctx context.Context, sellerID string, orderID id.ID, renderedAt time.Time) (*Result, error) {
	o, err := s.orders.GetByID(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}

	sel, err := s.sellers.Find(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	model, warnings := Build(o, sel, renderedAt, s.opts)
	for _, w := range warnings {
		logger.Warn(ctx, "invoice integrity warning",
			"order_number", w.OrderNumber,
			"field", w.Field,
			"persisted", w.Persisted.StringFixed(2),
			"computed", w.Computed.StringFixed(2))
	}

	doc, err := s.renderer.Render(model)
	if err != nil {
		return nil, apperror.NewRenderFailed("invoice could not be rendered", err).
			WithDetail("orderNumber", model.OrderNumber)
	}

	summary, err := s.text.Render(model)
	if err != nil {
		return nil, apperror.NewRenderFailed("invoice summary could not be rendered", err).
			WithDetail("orderNumber", model.OrderNumber)
	}

	filename := model.Filename(s.renderer.Extension())

	return &Result{
		Model:       model,
		Document:    doc,
		ContentType: s.renderer.ContentType(),
		Filename:    filename,
		DataURL:     DataURL(s.renderer.ContentType(), filename, doc),
		Summary:     summary,
		Share:       s.share.Build(o),
		Warnings:    warnings,
	}, nil
}
