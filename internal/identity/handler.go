package identity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kintai-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: pub は未認証（登録）、r は認証済み、priv は manager/admin
func RegisterRoutes(pub gin.IRoutes, r gin.IRoutes, priv gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	pub.POST("/auth/register", h.Register)

	r.GET("/profiles", h.ListProfiles)
	r.GET("/profiles/:user_id", h.GetProfile)
	r.PUT("/profiles/:user_id", h.UpdateProfile)
	r.GET("/profiles/:user_id/roles", h.ListRoles)

	priv.POST("/roles", h.GrantRole)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	limit := atoiDef(c.Query("limit"), DefaultPageLimit)
	offset := atoiDef(c.Query("offset"), 0)

	items, total, err := h.svc.ListProfiles(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) GetProfile(c *gin.Context) {
	res, err := h.svc.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	actorID := c.GetString(auth.CtxUserIDKey)
	res, err := h.svc.UpdateProfile(c.Request.Context(), actorID, c.Param("user_id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListRoles(c *gin.Context) {
	res, err := h.svc.ListRoles(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GrantRole(c *gin.Context) {
	var req GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	actorID := c.GetString(auth.CtxUserIDKey)
	if err := h.svc.GrantRole(c.Request.Context(), actorID, req); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "role granted"})
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
