package handlers

import (
	"errors"
	"net/http"

	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/repository"
)

type UserHandler struct {
	userRepo *repository.UserRepository
	teamRepo *repository.TeamRepository
}

func NewUserHandler(userRepo *repository.UserRepository, teamRepo *repository.TeamRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		teamRepo: teamRepo,
	}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.GetUsers()
	if err != nil {
		writeFailure(w, r, "Error retrieving users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByCognitoId(r.PathValue("cognitoId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeFailure(w, r, "Error retrieving user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamRepo.GetTeams()
	if err != nil {
		writeFailure(w, r, "Error retrieving teams", err)
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}
