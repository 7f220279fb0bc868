package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"post-radar/domain/dto"
	"post-radar/domain/repository"
)

type IAccountHandler interface {
	List(ctx *gin.Context)
}

type AccountHandler struct {
	trackedAccountRepo repository.ITrackedAccount
	settingsRepo       repository.ISettings
}

func NewAccountHandler(trackedAccountRepo repository.ITrackedAccount, settingsRepo repository.ISettings) IAccountHandler {
	return &AccountHandler{trackedAccountRepo: trackedAccountRepo, settingsRepo: settingsRepo}
}

// List returns the member's tracked accounts along with the effective
// retention window applied during fetch runs.
func (h *AccountHandler) List(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	accounts, err := h.trackedAccountRepo.ListByMember(ctx.Request.Context(), memberID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	settings, err := h.settingsRepo.GetByMember(ctx.Request.Context(), memberID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"accounts":       accounts,
		"retention_days": settings.EffectiveRetentionDays(),
	})
}
