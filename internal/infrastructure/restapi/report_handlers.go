package restapi

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/service"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/configloader"
)

var (
	evmAddressRe      = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	starknetAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)
)

// ReportRequest is the request body for the report endpoint.
type ReportRequest struct {
	Address string `json:"address" binding:"required"`
	Chain   string `json:"chain" binding:"required"`
}

// ReportHandler handles HTTP requests for portfolio reports.
type ReportHandler struct {
	reports *service.ReportService
	chains  port.ChainDefinitionProvider
	logger  port.Logger
	timeout time.Duration
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs *service.ReportService, chains port.ChainDefinitionProvider, l port.Logger, cfg *configloader.Config) *ReportHandler {
	return &ReportHandler{
		reports: rs,
		chains:  chains,
		logger:  l,
		timeout: time.Duration(cfg.Performance.RequestTimeoutSeconds) * time.Second,
	}
}

// CreateReportHandler builds one portfolio report. Degraded multi-chain
// requests (some chains failed) still return 200 with whatever holdings were
// recoverable; only a fully-failed request returns an error status.
func (h *ReportHandler) CreateReportHandler(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and chain are required"})
		return
	}
	if err := h.validate(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	analysis, reportErrs, err := h.reports.BuildReport(ctx, req.Address, req.Chain)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnsupportedChain):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrAllChainsFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not fetch balances from any requested chain"})
		default:
			h.logger.Error("Report build failed", "address", req.Address, "chain", req.Chain, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	if len(reportErrs) > 0 {
		h.logger.Warn("Report served with degraded chain coverage",
			"address", req.Address, "chain", req.Chain, "failed_chains", len(reportErrs))
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *ReportHandler) validate(req ReportRequest) error {
	if req.Chain == entity.ChainTagAll {
		// Any well-formed hex address; per-chain fetches degrade gracefully
		// where the address family does not apply.
		if !starknetAddressRe.MatchString(req.Address) {
			return errors.New("address is not a valid hex address")
		}
		return nil
	}

	def, ok := h.chains.GetChainDefinition(req.Chain)
	if !ok {
		return errors.New("unsupported chain: " + req.Chain)
	}

	switch def.Family {
	case entity.ChainFamilyStarknet:
		if !starknetAddressRe.MatchString(req.Address) {
			return errors.New("address is not a valid starknet address")
		}
	default:
		if !evmAddressRe.MatchString(req.Address) {
			return errors.New("address is not a valid EVM address")
		}
	}
	return nil
}
