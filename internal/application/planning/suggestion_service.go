package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/catalog"
	"github.com/stockpilot/backend/internal/domain/planning"
	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/trade"
)

// ConversionScope runs a suggestion-to-order conversion atomically: the new
// purchase order and the suggestion's status change commit or roll back
// together.
type ConversionScope interface {
	Execute(ctx context.Context, fn func(repos ConversionRepositories) error) error
}

// ConversionRepositories are the repositories visible inside a conversion
// transaction.
type ConversionRepositories interface {
	SuggestionRepo() planning.SuggestionRepository
	OrderRepo() trade.PurchaseOrderRepository
}

// NoOpConversionScope executes conversions without a real transaction.
type NoOpConversionScope struct {
	suggestionRepo planning.SuggestionRepository
	orderRepo      trade.PurchaseOrderRepository
}

// NewNoOpConversionScope creates a NoOpConversionScope.
func NewNoOpConversionScope(suggestionRepo planning.SuggestionRepository, orderRepo trade.PurchaseOrderRepository) *NoOpConversionScope {
	return &NoOpConversionScope{suggestionRepo: suggestionRepo, orderRepo: orderRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpConversionScope) Execute(_ context.Context, fn func(repos ConversionRepositories) error) error {
	return fn(s)
}

func (s *NoOpConversionScope) SuggestionRepo() planning.SuggestionRepository { return s.suggestionRepo }

func (s *NoOpConversionScope) OrderRepo() trade.PurchaseOrderRepository { return s.orderRepo }

// SuggestionService groups a plan's material shortages into vendor-level
// suggested purchase orders and handles their approval or rejection.
type SuggestionService struct {
	suggestionRepo planning.SuggestionRepository
	planRepo       planning.PlanRepository
	vendorRepo     catalog.VendorRepository
	materialRepo   catalog.RawMaterialRepository
	conversion     ConversionScope
	reasoner       planning.ReasoningService
	logger         *zap.Logger
}

// NewSuggestionService creates a SuggestionService. reasoner may be nil; the
// rationale then always uses the deterministic template.
func NewSuggestionService(
	suggestionRepo planning.SuggestionRepository,
	planRepo planning.PlanRepository,
	vendorRepo catalog.VendorRepository,
	materialRepo catalog.RawMaterialRepository,
	conversion ConversionScope,
	reasoner planning.ReasoningService,
	logger *zap.Logger,
) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		suggestionRepo: suggestionRepo,
		planRepo:       planRepo,
		vendorRepo:     vendorRepo,
		materialRepo:   materialRepo,
		conversion:     conversion,
		reasoner:       reasoner,
		logger:         logger,
	}
}

// GenerateSuggestedPOs builds one pending suggestion per preferred vendor
// from the plan's shortage requirements. Requirements without a preferred
// vendor are returned in the unassigned list for manual sourcing; they are
// never silently dropped. Lead-time derived fields are back-filled onto the
// requirement rows.
func (s *SuggestionService) GenerateSuggestedPOs(ctx context.Context, tenantID, planID uuid.UUID) (*GenerateSuggestionsResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	requirements, err := s.planRepo.FindRequirements(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}

	byVendor := make(map[uuid.UUID][]planning.MaterialRequirement)
	var vendorOrder []uuid.UUID
	var unassigned []RequirementResponse

	for i := range requirements {
		req := &requirements[i]
		if !req.HasShortage() {
			continue
		}
		if req.PreferredVendorID == nil {
			unassigned = append(unassigned, ToRequirementResponse(req))
			continue
		}
		vendorID := *req.PreferredVendorID
		if _, ok := byVendor[vendorID]; !ok {
			vendorOrder = append(vendorOrder, vendorID)
		}
		byVendor[vendorID] = append(byVendor[vendorID], *req)
	}

	now := time.Now()
	suggestions := make([]SuggestionResponse, 0, len(byVendor))
	for _, vendorID := range vendorOrder {
		group := byVendor[vendorID]

		leadTimeDays, vendorName := s.vendorLeadTime(ctx, tenantID, vendorID)
		suggestion, err := planning.NewSuggestedPurchaseOrder(
			tenantID, planID, vendorID, group, leadTimeDays, now, plan.RequiredByDate)
		if err != nil {
			return nil, err
		}
		suggestion.SetRationale(s.rationale(ctx, vendorName, suggestion, group))

		if err := s.suggestionRepo.Save(ctx, suggestion); err != nil {
			return nil, err
		}

		daysUntil := planning.DaysUntilRequired(now, plan.RequiredByDate)
		urgent := planning.IsUrgent(leadTimeDays, daysUntil)
		latest := planning.LatestOrderDate(now, plan.RequiredByDate, leadTimeDays)
		for i := range group {
			group[i].ApplyLeadTime(leadTimeDays, urgent, latest)
			if err := s.planRepo.SaveRequirement(ctx, &group[i]); err != nil {
				return nil, err
			}
		}

		suggestions = append(suggestions, ToSuggestionResponse(suggestion))
	}

	s.logger.Info("suggested purchase orders generated",
		zap.String("plan_id", planID.String()),
		zap.Int("suggestions", len(suggestions)),
		zap.Int("unassigned", len(unassigned)))

	return &GenerateSuggestionsResponse{Suggestions: suggestions, Unassigned: unassigned}, nil
}

// vendorLeadTime resolves a vendor's effective lead time, falling back to the
// catalog default when the vendor is missing or unconfigured.
func (s *SuggestionService) vendorLeadTime(ctx context.Context, tenantID, vendorID uuid.UUID) (int, string) {
	vendor, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		return catalog.DefaultVendorLeadTimeDays, ""
	}
	return vendor.EffectiveLeadTimeDays(), vendor.Name
}

// rationale explains a suggestion in plain language. The reasoning service is
// tried first; its failure falls back to a deterministic template.
func (s *SuggestionService) rationale(ctx context.Context, vendorName string, suggestion *planning.SuggestedPurchaseOrder, group []planning.MaterialRequirement) string {
	if s.reasoner != nil {
		text, err := s.reasoner.Generate(ctx, rationalePrompt(vendorName, suggestion, group))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			s.logger.Warn("rationale generation unavailable, using template", zap.Error(err))
		}
	}
	return templatedRationale(vendorName, suggestion, group)
}

func rationalePrompt(vendorName string, suggestion *planning.SuggestedPurchaseOrder, group []planning.MaterialRequirement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write two sentences explaining to a purchasing manager why this purchase order is suggested for vendor %q (lead time %d days, required by %s, urgent: %t):\n",
		vendorName, suggestion.LeadTimeDays, suggestion.RequiredByDate.Format("2006-01-02"), suggestion.IsUrgent)
	for i := range group {
		fmt.Fprintf(&b, "  material %s: shortage %s %s, order %s %s\n",
			group[i].RawMaterialID, group[i].ShortageQuantity, group[i].Unit,
			group[i].SuggestedOrderQty, group[i].Unit)
	}
	b.WriteString("Reply with the explanation only.")
	return b.String()
}

func templatedRationale(vendorName string, suggestion *planning.SuggestedPurchaseOrder, group []planning.MaterialRequirement) string {
	name := vendorName
	if name == "" {
		name = "the preferred vendor"
	}
	urgency := "Ordering by the suggested date keeps production on schedule."
	if suggestion.IsUrgent {
		urgency = fmt.Sprintf("The %d-day lead time exceeds the time remaining; order immediately and consider expediting.", suggestion.LeadTimeDays)
	}
	return fmt.Sprintf("%d material(s) from %s fall short of the quantity required by %s. %s",
		len(group), name, suggestion.RequiredByDate.Format("2006-01-02"), urgency)
}

// Approve converts a pending suggestion into a draft purchase order. The
// conversion is atomic and idempotent: approving an already converted
// suggestion fails with ErrAlreadyConverted and creates no second order.
func (s *SuggestionService) Approve(ctx context.Context, tenantID, suggestionID uuid.UUID) (*ApproveSuggestionResponse, error) {
	var resp *ApproveSuggestionResponse

	err := s.conversion.Execute(ctx, func(repos ConversionRepositories) error {
		suggestion, err := repos.SuggestionRepo().FindByID(ctx, tenantID, suggestionID)
		if err != nil {
			return err
		}
		if suggestion.Status == planning.SuggestionStatusConverted {
			return shared.ErrAlreadyConverted
		}

		vendorName := "Unknown vendor"
		if vendor, err := s.vendorRepo.FindByID(ctx, tenantID, suggestion.VendorID); err == nil {
			vendorName = vendor.Name
		}

		order, err := trade.NewPurchaseOrder(tenantID, suggestion.VendorID, vendorName)
		if err != nil {
			return err
		}
		order.SetSourceSuggestion(suggestion.ID)
		if err := order.SetExpectedDelivery(suggestion.EstimatedDeliveryDate); err != nil {
			return err
		}

		for i := range suggestion.Items {
			item := &suggestion.Items[i]
			name, code, unit := s.materialDisplay(ctx, tenantID, item.RawMaterialID, item.Unit)
			if _, err := order.AddItem(item.RawMaterialID, name, code, unit, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		if err := suggestion.MarkConverted(order.ID); err != nil {
			return err
		}
		// The guarded update is what actually settles concurrent approvals:
		// if another transaction converted the suggestion after our read, zero
		// rows match the pending predicate and the whole transaction, order
		// included, rolls back.
		if err := repos.SuggestionRepo().ConvertPending(ctx, tenantID, suggestion.ID, order.ID); err != nil {
			return err
		}

		resp = &ApproveSuggestionResponse{
			Suggestion:  ToSuggestionResponse(suggestion),
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("suggestion approved",
		zap.String("suggestion_id", suggestionID.String()),
		zap.String("order_id", resp.OrderID.String()))
	return resp, nil
}

func (s *SuggestionService) materialDisplay(ctx context.Context, tenantID, materialID uuid.UUID, fallbackUnit string) (name, code, unit string) {
	material, err := s.materialRepo.FindByID(ctx, tenantID, materialID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("material lookup failed", zap.String("material_id", materialID.String()), zap.Error(err))
		}
		return "Unknown material", materialID.String()[:8], fallbackUnit
	}
	return material.Name, material.Code, material.Unit
}

// Reject closes a pending suggestion with a reason.
func (s *SuggestionService) Reject(ctx context.Context, tenantID, suggestionID uuid.UUID, req RejectSuggestionRequest) (*SuggestionResponse, error) {
	suggestion, err := s.suggestionRepo.FindByID(ctx, tenantID, suggestionID)
	if err != nil {
		return nil, err
	}
	if err := suggestion.Reject(req.Reason); err != nil {
		return nil, err
	}
	if err := s.suggestionRepo.Save(ctx, suggestion); err != nil {
		return nil, err
	}
	resp := ToSuggestionResponse(suggestion)
	return &resp, nil
}

// GetSuggestion returns one suggestion with its items.
func (s *SuggestionService) GetSuggestion(ctx context.Context, tenantID, suggestionID uuid.UUID) (*SuggestionResponse, error) {
	suggestion, err := s.suggestionRepo.FindByID(ctx, tenantID, suggestionID)
	if err != nil {
		return nil, err
	}
	resp := ToSuggestionResponse(suggestion)
	return &resp, nil
}

// ListPending returns pending suggestions, highest priority first.
func (s *SuggestionService) ListPending(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SuggestionResponse, error) {
	suggestions, err := s.suggestionRepo.FindPending(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]SuggestionResponse, 0, len(suggestions))
	for i := range suggestions {
		result = append(result, ToSuggestionResponse(&suggestions[i]))
	}
	return result, nil
}
