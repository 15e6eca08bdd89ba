package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kintai-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 参照は認証済み全員、更新は priv (manager/admin) 側のグループに載せる
func RegisterRoutes(r gin.IRoutes, priv gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/settings/late-threshold", h.GetLateThreshold)
	priv.PUT("/settings/late-threshold", h.UpdateLateThreshold)
}

func (h *Handler) GetLateThreshold(c *gin.Context) {
	th, err := h.svc.GetLateThreshold(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, th)
}

type UpdateThresholdRequest struct {
	Hours   *int `json:"hours" binding:"required"`
	Minutes *int `json:"minutes" binding:"required"`
}

func (h *Handler) UpdateLateThreshold(c *gin.Context) {
	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	actorID := c.GetString(auth.CtxUserIDKey)
	th, err := h.svc.UpdateLateThreshold(c.Request.Context(), actorID, LateThreshold{Hours: *req.Hours, Minutes: *req.Minutes})
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, th)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
