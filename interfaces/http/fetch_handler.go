package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"post-radar/domain/dto"
	"post-radar/domain/repository"
	"post-radar/infrastructure/logger"
	"post-radar/infrastructure/realtime"
	"post-radar/usecase"
)

type IFetchHandler interface {
	Run(ctx *gin.Context)
	Stream(ctx *gin.Context)
	ListLogs(ctx *gin.Context)
}

type FetchHandler struct {
	fetchUsecase usecase.IFetchUsecase
	runLogRepo   repository.IRunLog
}

func NewFetchHandler(uc usecase.IFetchUsecase, runLogRepo repository.IRunLog) IFetchHandler {
	return &FetchHandler{fetchUsecase: uc, runLogRepo: runLogRepo}
}

// Run executes one fetch run and returns the aggregate directly, for
// callers that do not need incremental progress.
func (h *FetchHandler) Run(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	result, err := h.fetchUsecase.Run(ctx.Request.Context(), memberID, nil)
	if err != nil {
		h.writeRunError(ctx, memberID, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Stream executes one fetch run while emitting per-account progress as
// server-sent events. The terminal done event carries the aggregate; it is
// omitted when the client disconnects first.
func (h *FetchHandler) Stream(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	stream := realtime.NewStream()

	go func() {
		defer stream.End()
		result, err := h.fetchUsecase.Run(ctx.Request.Context(), memberID, stream.Emit)
		if err != nil {
			stream.Emit(dto.EventError, gin.H{"error": err.Error()})
			return
		}
		if ctx.Request.Context().Err() == nil {
			stream.Emit(dto.EventDone, result)
		}
	}()

	stream.Serve(ctx)
}

func (h *FetchHandler) ListLogs(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	limit := parseLimit(ctx, 20)
	logs, err := h.runLogRepo.ListFetchLogs(ctx.Request.Context(), memberID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *FetchHandler) writeRunError(ctx *gin.Context, memberID string, err error) {
	logger.GetLogger().WithField("member_id", memberID).WithField("error", err).Warn("fetch run failed")
	switch {
	case errors.Is(err, usecase.ErrSourceNotConfigured):
		ctx.JSON(http.StatusPreconditionFailed, dto.Res{ResponseCode: "412", ResponseMessage: err.Error()})
	case errors.Is(err, usecase.ErrRunInProgress):
		ctx.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
	}
}

func parseLimit(ctx *gin.Context, fallback int) int {
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			return n
		}
	}
	return fallback
}
