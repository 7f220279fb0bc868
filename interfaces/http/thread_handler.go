package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"post-radar/domain/dto"
	"post-radar/usecase"
)

type IThreadHandler interface {
	List(ctx *gin.Context)
}

type ThreadHandler struct {
	threadUsecase usecase.IThreadUsecase
}

func NewThreadHandler(uc usecase.IThreadUsecase) IThreadHandler {
	return &ThreadHandler{threadUsecase: uc}
}

// List returns the member's stored posts regrouped into threads, newest
// thread first.
func (h *ThreadHandler) List(ctx *gin.Context) {
	memberID := ctx.GetString("member_id")
	limit := parseLimit(ctx, 100)
	threads, err := h.threadUsecase.List(ctx.Request.Context(), memberID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"threads": threads})
}
