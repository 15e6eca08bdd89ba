package invitation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kintai-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: pub は未認証（登録画面のプリフィル）、priv は manager/admin
func RegisterRoutes(pub gin.IRoutes, priv gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 招待リンク: /register?token=... から叩かれる
	pub.GET("/invitations/:token", h.Prefill)

	priv.POST("/invitations", h.Create)
	priv.GET("/invitations", h.List)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	actorID := c.GetString(auth.CtxUserIDKey)
	res, err := h.svc.Create(c.Request.Context(), actorID, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/invitations/"+res.Token)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Prefill(c *gin.Context) {
	res, err := h.svc.Prefill(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	limit := atoiDef(c.Query("limit"), DefaultPageLimit)
	offset := atoiDef(c.Query("offset"), 0)

	items, total, err := h.svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// ---------- helpers ----------

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

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
