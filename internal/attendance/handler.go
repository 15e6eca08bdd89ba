package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kintai-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: r は認証済みグループ、priv は manager/admin グループ
func RegisterRoutes(r gin.IRoutes, priv gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/attendances/check-in", h.CheckIn)
	r.POST("/attendances/check-out", h.CheckOut)
	r.GET("/attendances", h.List)
	r.GET("/attendances/:id", h.Get)

	priv.PUT("/attendances/:id", h.Override)
	priv.DELETE("/attendances/:id", h.Delete)
}

func (h *Handler) CheckIn(c *gin.Context) {
	actorID := c.GetString(auth.CtxUserIDKey)
	res, err := h.svc.CheckIn(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) CheckOut(c *gin.Context) {
	actorID := c.GetString(auth.CtxUserIDKey)
	res, err := h.svc.CheckOut(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid id"))
		return
	}
	actorID := c.GetString(auth.CtxUserIDKey)
	res, err := h.svc.Get(c.Request.Context(), actorID, id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if v := c.Query("user_id"); v != "" {
		q.UserID = &v
	}
	if v := c.Query("on"); v != "" {
		q.On = &v
	}
	if v := c.Query("from"); v != "" {
		q.From = &v
	}
	if v := c.Query("to"); v != "" {
		q.To = &v
	}
	if v := c.Query("status"); v != "" {
		q.Status = &v
	}
	q.Limit = atoiDef(c.Query("limit"), DefaultPageLimit)
	q.Offset = atoiDef(c.Query("offset"), 0)
	q.Sort = c.DefaultQuery("sort", DefaultSort)

	actorID := c.GetString(auth.CtxUserIDKey)
	items, total, err := h.svc.List(c.Request.Context(), actorID, q)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) Override(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid id"))
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	actorID := c.GetString(auth.CtxUserIDKey)
	res, err := h.svc.Override(c.Request.Context(), actorID, id, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid id"))
		return
	}
	actorID := c.GetString(auth.CtxUserIDKey)
	if err := h.svc.Delete(c.Request.Context(), actorID, id); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
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
