package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	"github.com/riskibarqy/tonttery/internal/usecase"
)

type clientPathRequest struct {
	ClientID string `validate:"required,uuid"`
}

type lotteryPathRequest struct {
	LotteryID string `validate:"required,uuid"`
	ClientID  string `validate:"omitempty,uuid"`
}

type membershipPathRequest struct {
	LotteryID string `validate:"required,uuid"`
	ClientID  string `validate:"required,uuid"`
}

type pageRequest struct {
	Page int `validate:"gte=0"`
	Size int `validate:"gte=1,lte=100"`
	Sort []pagination.Order
}

type lotteryResultDTO struct {
	ID                     string `json:"id"`
	WinnerID               string `json:"winnerId,omitempty"`
	WinnerTelegramUserName string `json:"winnerTelegramUserName,omitempty"`
	WinnerTelegramID       int64  `json:"winnerTelegramId,omitempty"`
	Type                   string `json:"type"`
	Status                 string `json:"status"`
	StartDate              string `json:"startDate"`
	Players                int    `json:"players"`
	Prize                  string `json:"prize"`
	Joined                 bool   `json:"joined"`
}

type lotteryShortDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
}

type clientResultDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TelegramID       int64  `json:"telegramId"`
	TelegramUserName string `json:"telegramUserName,omitempty"`
	Image            string `json:"image,omitempty"`
	AuthenticatedAt  string `json:"authenticatedAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
}

type clientShortDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TelegramUserName string `json:"telegramUserName,omitempty"`
	IsPremium        bool   `json:"isPremium"`
}

type pageDTO[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// parsePageRequest reads page, size and repeated sort=field,dir parameters.
func (h *Handler) parsePageRequest(ctx context.Context, r *http.Request, allowedSort map[string]struct{}) (pagination.Request, error) {
	query := r.URL.Query()
	req := pageRequest{Size: pagination.DefaultSize}

	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Request{}, fmt.Errorf("%w: page must be an integer", usecase.ErrInvalidInput)
		}
		req.Page = value
	}
	if raw := strings.TrimSpace(query.Get("size")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Request{}, fmt.Errorf("%w: size must be an integer", usecase.ErrInvalidInput)
		}
		req.Size = value
	}

	sort, err := pagination.ParseSort(query["sort"], allowedSort)
	if err != nil {
		return pagination.Request{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	req.Sort = sort

	if err := h.validateRequest(ctx, req); err != nil {
		return pagination.Request{}, err
	}

	return pagination.Request{Page: req.Page, Size: req.Size, Sort: req.Sort}, nil
}

func lotteryResultToDTO(v usecase.LotteryResult) lotteryResultDTO {
	return lotteryResultDTO{
		ID:                     v.ID,
		WinnerID:               v.WinnerID,
		WinnerTelegramUserName: v.WinnerTelegramUserName,
		WinnerTelegramID:       v.WinnerTelegramID,
		Type:                   string(v.Type),
		Status:                 string(v.Status),
		StartDate:              formatDate(v.StartDate),
		Players:                v.Players,
		Prize:                  v.Prize.String(),
		Joined:                 v.Joined,
	}
}

func lotteryShortToDTO(v usecase.LotteryShort) lotteryShortDTO {
	return lotteryShortDTO{
		ID:        v.ID,
		Type:      string(v.Type),
		Status:    string(v.Status),
		StartDate: formatDate(v.StartDate),
	}
}

func clientResultToDTO(v usecase.ClientResult) clientResultDTO {
	return clientResultDTO{
		ID:               v.ID,
		Name:             v.Name,
		TelegramID:       v.TelegramID,
		TelegramUserName: v.TelegramUserName,
		Image:            v.Image,
		AuthenticatedAt:  formatTimestamp(v.AuthenticatedAt),
		UpdatedAt:        formatTimestamp(v.UpdatedAt),
	}
}

func clientShortToDTO(v usecase.ClientShort) clientShortDTO {
	return clientShortDTO{
		ID:               v.ID,
		Name:             v.Name,
		TelegramUserName: v.TelegramUserName,
		IsPremium:        v.IsPremium,
	}
}

func pageToDTO[T, R any](in pagination.Page[T], fn func(T) R) pageDTO[R] {
	mapped := pagination.Map(in, fn)
	return pageDTO[R]{
		Items:      mapped.Items,
		Page:       mapped.Page,
		Size:       mapped.Size,
		TotalItems: mapped.TotalItems,
		TotalPages: mapped.TotalPages,
	}
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(lottery.DateLayout)
}

func formatTimestamp(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
