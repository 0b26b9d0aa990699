package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parsePage reads offset/limit query parameters with defaults.
func parsePage(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50 // Default page size
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// ===== Auth =====

type loginRequest struct {
	Key string `json:"key"`
}

// loginHandler exchanges the shared admin key for an admin token.
func loginHandler(adminKey string, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if adminKey == "" || req.Key != adminKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		token, err := auth.Mint(w, "admin", model.RoleAdmin)
		if err != nil {
			http.Error(w, "Failed to mint token", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func logoutHandler(auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== Users =====

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// registerHandler is the public sign-up endpoint. Registering an existing
// username returns that member again, so clients can treat it as a login.
func registerHandler(userUC usecase.UserUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		user, err := userUC.RegisterOrFetch(ctx, req.Username, req.DisplayName)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrAlreadyExists):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "Failed to register", http.StatusInternalServerError)
			}
			return
		}

		role := model.RoleMember
		if user.IsAdmin {
			role = model.RoleAdmin
		}
		token, err := auth.Mint(w, user.ID, role)
		if err != nil {
			http.Error(w, "Failed to mint token", http.StatusInternalServerError)
			return
		}

		response := struct {
			User  *model.User `json:"user"`
			Token string      `json:"token"`
		}{User: user, Token: token}
		respondJSON(w, http.StatusCreated, response)
	}
}

// usersListHandler returns a paginated list of users.
// It accepts 'offset' and 'limit' query parameters.
func usersListHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		offset, limit := parsePage(r)

		users, err := userUC.List(ctx, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list users", http.StatusInternalServerError)
			return
		}

		// Also fetch the total count for pagination metadata
		total, err := userUC.Count(ctx)
		if err != nil {
			http.Error(w, "Failed to count users", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.User `json:"data"`
			Total  int           `json:"total"`
			Limit  int           `json:"limit"`
			Offset int           `json:"offset"`
		}{Data: users, Total: total, Limit: limit, Offset: offset}
		respondJSON(w, http.StatusOK, response)
	}
}

func userGetHandler(userUC usecase.UserUseCase, visitUC usecase.VisitUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		user, err := userUC.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get user", http.StatusInternalServerError)
			return
		}

		visits, err := visitUC.ListByUser(ctx, user.ID, 0, 20)
		if err != nil {
			http.Error(w, "Failed to get user visits", http.StatusInternalServerError)
			return
		}

		response := struct {
			User   *model.User    `json:"user"`
			Visits []*model.Visit `json:"visits"`
		}{User: user, Visits: visits}
		respondJSON(w, http.StatusOK, response)
	}
}

func meHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)

		user, err := userUC.Get(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get profile", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

// ===== Visits =====

type acceptVisitRequest struct {
	Code     string `json:"code"`
	Activity string `json:"activity"`
}

// acceptVisitHandler lets venue staff record a scanned code against an
// activity. The role check lives in the use case, which is why a non-admin
// token gets 403 here rather than being filtered by middleware.
func acceptVisitHandler(visitUC usecase.VisitUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, ok := PrincipalFrom(ctx)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req acceptVisitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := visitUC.AcceptVisit(ctx, p, req.Code, req.Activity); err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				http.Error(w, err.Error(), http.StatusForbidden)
			case errors.Is(err, domain.ErrInvalidActivity), errors.Is(err, domain.ErrInvalidOrExpiredCode):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "Failed to accept visit", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func myVisitsHandler(visitUC usecase.VisitUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)
		offset, limit := parsePage(r)

		visits, err := visitUC.ListByUser(ctx, p.UserID, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list visits", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.Visit `json:"data"`
			Limit  int            `json:"limit"`
			Offset int            `json:"offset"`
		}{Data: visits, Limit: limit, Offset: offset}
		respondJSON(w, http.StatusOK, response)
	}
}

// ===== Activities =====

type activityCreateRequest struct {
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

func activitiesCreateHandler(activityUC usecase.ActivityUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req activityCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		activity, err := activityUC.Create(ctx, req.Name, req.Points)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrAlreadyExists):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "Failed to create activity", http.StatusInternalServerError)
			}
			return
		}
		respondJSON(w, http.StatusCreated, activity)
	}
}

func activitiesListHandler(activityUC usecase.ActivityUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		activeOnly := r.URL.Query().Get("all") != "true"

		activities, err := activityUC.List(ctx, activeOnly)
		if err != nil {
			http.Error(w, "Failed to list activities", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Activity `json:"data"`
		}{Data: activities}
		respondJSON(w, http.StatusOK, response)
	}
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func activitySetActiveHandler(activityUC usecase.ActivityUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req setActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := activityUC.SetActive(ctx, chi.URLParam(r, "id"), req.Active); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to update activity", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== QR codes =====

type qrIssueRequest struct {
	UserID string `json:"user_id"`
}

func qrIssueHandler(qrUC usecase.QRCodeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req qrIssueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		code, err := qrUC.Issue(ctx, req.UserID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "Failed to issue code", http.StatusInternalServerError)
			}
			return
		}
		respondJSON(w, http.StatusCreated, code)
	}
}

func qrRevokeHandler(qrUC usecase.QRCodeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := qrUC.Revoke(ctx, chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to revoke code", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func myCodesHandler(qrUC usecase.QRCodeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)
		activeOnly := r.URL.Query().Get("all") != "true"

		codes, err := qrUC.ListByUser(ctx, p.UserID, activeOnly)
		if err != nil {
			http.Error(w, "Failed to list codes", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.QRCode `json:"data"`
		}{Data: codes}
		respondJSON(w, http.StatusOK, response)
	}
}

// ===== Ledger =====

func myLedgerHandler(ledgerUC usecase.LedgerUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)
		offset, limit := parsePage(r)

		balance, err := ledgerUC.Balance(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get balance", http.StatusInternalServerError)
			return
		}

		entries, err := ledgerUC.History(ctx, p.UserID, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
			return
		}

		response := struct {
			Balance int64                      `json:"balance"`
			Data    []*model.PointsTransaction `json:"data"`
			Limit   int                        `json:"limit"`
			Offset  int                        `json:"offset"`
		}{Balance: balance, Data: entries, Limit: limit, Offset: offset}
		respondJSON(w, http.StatusOK, response)
	}
}

// ===== Rewards =====

type rewardCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CostPoints  int64  `json:"cost_points"`
}

func rewardsCreateHandler(rewardUC usecase.RewardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req rewardCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		reward, err := rewardUC.Create(ctx, req.Name, req.Description, req.CostPoints)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrAlreadyExists):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "Failed to create reward", http.StatusInternalServerError)
			}
			return
		}
		respondJSON(w, http.StatusCreated, reward)
	}
}

func rewardsListHandler(rewardUC usecase.RewardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		activeOnly := r.URL.Query().Get("all") != "true"

		rewards, err := rewardUC.List(ctx, activeOnly)
		if err != nil {
			http.Error(w, "Failed to list rewards", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Reward `json:"data"`
		}{Data: rewards}
		respondJSON(w, http.StatusOK, response)
	}
}

func rewardSetActiveHandler(rewardUC usecase.RewardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req setActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := rewardUC.SetActive(ctx, chi.URLParam(r, "id"), req.Active); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to update reward", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func rewardRedeemHandler(rewardUC usecase.RewardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)

		redemption, err := rewardUC.Redeem(ctx, p.UserID, chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInsufficientPoints), errors.Is(err, domain.ErrRedemptionInProgress):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domain.ErrRewardUnavailable):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
			default:
				http.Error(w, "Failed to redeem reward", http.StatusInternalServerError)
			}
			return
		}
		respondJSON(w, http.StatusCreated, redemption)
	}
}

func myRedemptionsHandler(rewardUC usecase.RewardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)
		offset, limit := parsePage(r)

		redemptions, err := rewardUC.ListRedemptions(ctx, p.UserID, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list redemptions", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.Redemption `json:"data"`
			Limit  int                 `json:"limit"`
			Offset int                 `json:"offset"`
		}{Data: redemptions, Limit: limit, Offset: offset}
		respondJSON(w, http.StatusOK, response)
	}
}

// ===== Feedback =====

type feedbackRequest struct {
	Mood    int    `json:"mood"`
	Comment string `json:"comment"`
}

func feedbackSubmitHandler(feedbackUC usecase.FeedbackUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p, _ := PrincipalFrom(ctx)

		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		fb, err := feedbackUC.Submit(ctx, p.UserID, req.Mood, req.Comment)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to submit feedback", http.StatusInternalServerError)
			return
		}
		// The stored comment is ciphertext, so only the id goes back out.
		respondJSON(w, http.StatusCreated, map[string]string{"id": fb.ID})
	}
}

func feedbackRecentHandler(feedbackUC usecase.FeedbackUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		list, err := feedbackUC.Recent(ctx, limit)
		if err != nil {
			http.Error(w, "Failed to list feedback", http.StatusInternalServerError)
			return
		}

		moods, err := feedbackUC.MoodBreakdown(ctx, time.Now().Add(-30*24*time.Hour))
		if err != nil {
			http.Error(w, "Failed to count moods", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data  []*model.Feedback `json:"data"`
			Moods map[int]int       `json:"moods"`
		}{Data: list, Moods: moods}
		respondJSON(w, http.StatusOK, response)
	}
}

// ===== Stats =====

// statsHandler returns an http.HandlerFunc that serves venue statistics.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := statsUC.Totals(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}
