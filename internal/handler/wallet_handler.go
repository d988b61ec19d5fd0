package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/service"
)

// WalletHandler exposes the credit ledger surface.
type WalletHandler struct {
	ledger service.LedgerService
	users  service.UserService
}

func NewWalletHandler(ledger service.LedgerService, users service.UserService) *WalletHandler {
	return &WalletHandler{ledger: ledger, users: users}
}

func (h *WalletHandler) Routes(r chi.Router) {
	r.Get("/", h.Balance)
	r.Get("/statement", h.Statement)
	r.Post("/redeem", h.Redeem)
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	profile, err := h.users.GetProfile(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"total_credits":  profile.TotalCredits,
		"credits_earned": profile.CreditsEarned,
		"credits_spent":  profile.CreditsSpent,
		"skill_coins":    profile.SkillCoins,
		"skillcoin_rate": h.ledger.SkillCoinRate(),
	})
}

func (h *WalletHandler) Statement(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	page, perPage := pageParams(r)

	entries, err := h.ledger.GetStatement(r.Context(), user.ID, page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

type redeemRequest struct {
	Credits int64 `json:"credits"`
}

func (h *WalletHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req redeemRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	balance, err := h.ledger.RedeemForSkillCoin(r.Context(), user.ID, req.Credits)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, balance)
}
