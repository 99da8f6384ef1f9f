package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-tournament/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateTournament godoc
// @Summary Создать турнир
// @Tags tournaments
// @Description Создает турнир с начальными группами. Группы без участников отбрасываются.
// @Accept json
// @Produce json
// @Param body body services.CreateTournamentInput true "Название, дата (YYYY-MM-DD), количество победителей и группы"
// @Success 201 {object} map[string]interface{} "Сводка по созданному турниру"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 500 {object} map[string]string "Внутренняя ошибка сервера"
// @Router /tournaments [post]
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournaments godoc
// @Summary Список всех турниров
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]interface{} "Турниры, новые сначала"
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tournamentService.List(r.Context())
	h.writeSummaries(w, r, summaries, err)
}

// ListActiveTournaments godoc
// @Summary Список активных турниров
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/active [get]
func (h *TournamentHandler) ListActiveTournaments(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tournamentService.ListActive(r.Context())
	h.writeSummaries(w, r, summaries, err)
}

// ListArchivedTournaments godoc
// @Summary Список архивных турниров
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/archived [get]
func (h *TournamentHandler) ListArchivedTournaments(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tournamentService.ListArchived(r.Context())
	h.writeSummaries(w, r, summaries, err)
}

func (h *TournamentHandler) writeSummaries(w http.ResponseWriter, r *http.Request, summaries interface{}, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": summaries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournament godoc
// @Summary Получить турнир с группами
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ArchiveTournament godoc
// @Summary Архивировать турнир
// @Tags tournaments
// @Param tournamentID path int true "Tournament ID"
// @Success 204 "Турнир в архиве"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/archive [put]
func (h *TournamentHandler) ArchiveTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Archive(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTournament godoc
// @Summary Удалить турнир
// @Tags tournaments
// @Param tournamentID path int true "Tournament ID"
// @Success 204 "Турнир удален вместе с группами и результатами"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteActiveTournaments godoc
// @Summary Удалить все активные турниры
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]int "Количество удаленных турниров"
// @Router /tournaments [delete]
func (h *TournamentHandler) DeleteActiveTournaments(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tournamentService.DeleteActive(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateNextRound godoc
// @Summary Создать следующий раунд плей-офф
// @Tags tournaments
// @Description Добавляет number_of_players/2 пустых пар. Без параметра размер выводится из текущих пар на двоих.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param number_of_players query int false "Количество игроков в раунде"
// @Success 201 {object} map[string]interface{} "Турнир с новыми группами"
// @Failure 400 {object} map[string]string "Невозможно определить или некорректный размер раунда"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/next-round [post]
func (h *TournamentHandler) CreateNextRound(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	numberOfPlayers, err := optionalIntQuery(r, "number_of_players")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateNextRound(r.Context(), id, numberOfPlayers)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateGroupParticipants godoc
// @Summary Назначить игроков в пару
// @Tags tournaments
// @Accept json
// @Produce json
// @Param groupID path int true "Group ID"
// @Param body body []string true "Ровно два имени"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Пустой список или не два участника"
// @Failure 404 {object} map[string]string "Группа не найдена"
// @Router /tournaments/groups/{groupID}/participants [put]
func (h *TournamentHandler) UpdateGroupParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var participants []string
	if err := readJSON(w, r, &participants); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.tournamentService.UpdateGroupParticipants(r.Context(), id, participants)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRanking godoc
// @Summary Общий рейтинг игроков турнира
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/ranking [get]
func (h *TournamentHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ranking, err := h.tournamentService.Ranking(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ranking": ranking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
