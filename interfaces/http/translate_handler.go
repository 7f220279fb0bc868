package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"post-radar/domain/dto"
	"post-radar/domain/repository"
	"post-radar/infrastructure/clients/translator"
	"post-radar/infrastructure/configuration"
	"post-radar/infrastructure/logger"
	"post-radar/infrastructure/realtime"
	"post-radar/usecase"
)

type ITranslateHandler interface {
	Run(ctx *gin.Context)
	Stream(ctx *gin.Context)
	TranslateOne(ctx *gin.Context)
	Backlog(ctx *gin.Context)
	ListLogs(ctx *gin.Context)
}

type TranslateHandler struct {
	translateUsecase usecase.ITranslateUsecase
	runLogRepo       repository.IRunLog
}

func NewTranslateHandler(uc usecase.ITranslateUsecase, runLogRepo repository.IRunLog) ITranslateHandler {
	return &TranslateHandler{translateUsecase: uc, runLogRepo: runLogRepo}
}

// Run translates the whole backlog and returns the aggregate once finished.
func (h *TranslateHandler) Run(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	limit := parseLimit(ctx, configuration.C.Translate.BacklogLimit)
	result, err := h.translateUsecase.RunBacklog(ctx.Request.Context(), memberID, limit, nil)
	if err != nil {
		h.writeTranslateError(ctx, memberID, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Stream translates the backlog while emitting one event per post. The done
// event is omitted when the run was aborted by a client disconnect.
func (h *TranslateHandler) Stream(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	limit := parseLimit(ctx, configuration.C.Translate.BacklogLimit)
	stream := realtime.NewStream()

	go func() {
		defer stream.End()
		result, err := h.translateUsecase.RunBacklog(ctx.Request.Context(), memberID, limit, stream.Emit)
		if err != nil {
			stream.Emit(dto.EventError, gin.H{"error": err.Error()})
			return
		}
		if result.Aborted || ctx.Request.Context().Err() != nil {
			return
		}
		stream.Emit(dto.EventDone, result)
	}()

	stream.Serve(ctx)
}

// TranslateOne re-runs translation for a single stored post.
func (h *TranslateHandler) TranslateOne(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	postID := ctx.Param("postId")
	translated, err := h.translateUsecase.TranslateOne(ctx.Request.Context(), memberID, postID)
	if err != nil {
		if errors.Is(err, usecase.ErrPostNotFound) {
			ctx.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: err.Error()})
			return
		}
		h.writeTranslateError(ctx, memberID, err)
		return
	}
	ctx.JSON(http.StatusOK, translated)
}

// Backlog reports how many stored posts still await translation.
func (h *TranslateHandler) Backlog(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	count, err := h.translateUsecase.CountBacklog(ctx.Request.Context(), memberID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"backlog": count})
}

func (h *TranslateHandler) ListLogs(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	limit := parseLimit(ctx, 20)
	logs, err := h.runLogRepo.ListTranslateLogs(ctx.Request.Context(), memberID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *TranslateHandler) writeTranslateError(ctx *gin.Context, memberID string, err error) {
	logger.GetLogger().WithField("member_id", memberID).WithField("error", err).Warn("translate run failed")
	switch {
	case errors.Is(err, translator.ErrNotConfigured):
		ctx.JSON(http.StatusPreconditionFailed, dto.Res{ResponseCode: "412", ResponseMessage: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
	}
}
