package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/activity-scheduler/backend/internal/utils"
)

func (h *Handler) GetAllCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.repository.GetAllCatalogs()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排课目录成功", catalogs)
}

func (h *Handler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := &domain.Catalog{}
	if err := h.readJSON(w, r, catalog); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(catalog); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateCatalog(catalog); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateCatalog(catalog); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "catalogs_name_key":
				h.errorResponse(w, r, "排课目录名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建排课目录成功", catalog)
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	h.successResponse(w, r, "获取排课目录成功", catalog)
}

// UpdateCatalog 用请求中的内容整体替换排课目录
func (h *Handler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	current := r.Context().Value(CatalogCtx).(*domain.Catalog)

	catalog := &domain.Catalog{}
	if err := h.readJSON(w, r, catalog); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(catalog); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateCatalog(catalog); err != nil {
		h.badRequest(w, r, err)
		return
	}

	catalog.ID = current.ID
	catalog.CreatedAt = current.CreatedAt
	catalog.Version = current.Version

	if err := h.repository.UpdateCatalog(catalog); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "catalogs_name_key":
				h.errorResponse(w, r, "排课目录名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新排课目录成功", catalog)
}

func (h *Handler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := r.Context().Value(CatalogCtx).(*domain.Catalog)

	if err := h.repository.DeleteCatalog(catalog.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排课目录成功", nil)
}
