package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
)

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetClient")
	defer span.End()

	req := clientPathRequest{ClientID: strings.TrimSpace(r.PathValue("clientID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.lotteries.GetClient(ctx, req.ClientID)
	if err != nil {
		h.logger.WarnContext(ctx, "get client failed", "client_id", req.ClientID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlClient)
	writeSuccess(ctx, w, http.StatusOK, clientResultToDTO(result))
}

func (h *Handler) ListClientLotteries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListClientLotteries")
	defer span.End()

	req := clientPathRequest{ClientID: strings.TrimSpace(r.PathValue("clientID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	page, err := h.parsePageRequest(ctx, r, lottery.ListSortFields)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.lotteries.ListClientLotteries(ctx, req.ClientID, page)
	if err != nil {
		h.logger.WarnContext(ctx, "list client lotteries failed", "client_id", req.ClientID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNone)
	writeSuccess(ctx, w, http.StatusOK, pageToDTO(result, lotteryShortToDTO))
}

func (h *Handler) ListLotteries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLotteries")
	defer span.End()

	page, err := h.parsePageRequest(ctx, r, lottery.ListSortFields)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.lotteries.ListLotteries(ctx, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "list lotteries failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNone)
	writeSuccess(ctx, w, http.StatusOK, pageToDTO(result, lotteryShortToDTO))
}

func (h *Handler) GetLottery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLottery")
	defer span.End()

	req := lotteryPathRequest{
		LotteryID: strings.TrimSpace(r.PathValue("lotteryID")),
		ClientID:  strings.TrimSpace(r.URL.Query().Get("clientId")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.lotteries.GetLottery(ctx, req.LotteryID, req.ClientID)
	if err != nil {
		h.logger.WarnContext(ctx, "get lottery failed", "lottery_id", req.LotteryID, "client_id", req.ClientID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNone)
	writeSuccess(ctx, w, http.StatusOK, lotteryResultToDTO(result))
}

func (h *Handler) ListLotteryClients(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLotteryClients")
	defer span.End()

	req := lotteryPathRequest{LotteryID: strings.TrimSpace(r.PathValue("lotteryID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	page, err := h.parsePageRequest(ctx, r, client.MemberSortFields)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.lotteries.ListLotteryMembers(ctx, req.LotteryID, page)
	if err != nil {
		h.logger.WarnContext(ctx, "list lottery clients failed", "lottery_id", req.LotteryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNone)
	writeSuccess(ctx, w, http.StatusOK, pageToDTO(result, clientShortToDTO))
}

func (h *Handler) JoinLottery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLottery")
	defer span.End()

	req, ok := h.membershipRequest(ctx, w, r)
	if !ok {
		return
	}

	result, err := h.lotteries.Join(ctx, req.LotteryID, req.ClientID)
	if err != nil {
		h.logger.WarnContext(ctx, "join lottery failed", "lottery_id", req.LotteryID, "client_id", req.ClientID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNone)
	writeSuccess(ctx, w, http.StatusOK, lotteryResultToDTO(result))
}

func (h *Handler) CancelLottery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelLottery")
	defer span.End()

	req, ok := h.membershipRequest(ctx, w, r)
	if !ok {
		return
	}

	result, err := h.lotteries.Cancel(ctx, req.LotteryID, req.ClientID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel lottery failed", "lottery_id", req.LotteryID, "client_id", req.ClientID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", cacheControlNone)
	writeSuccess(ctx, w, http.StatusOK, lotteryResultToDTO(result))
}

func (h *Handler) membershipRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (membershipPathRequest, bool) {
	req := membershipPathRequest{
		LotteryID: strings.TrimSpace(r.PathValue("lotteryID")),
		ClientID:  strings.TrimSpace(r.PathValue("clientID")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return membershipPathRequest{}, false
	}
	return req, true
}
