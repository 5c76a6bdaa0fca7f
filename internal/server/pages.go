package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mannskor/ovingslogg/internal/entry"
	"github.com/mannskor/ovingslogg/internal/logbook"
	"github.com/mannskor/ovingslogg/internal/roster"
)

type formPageData struct {
	Groups          []roster.Group
	Grouped         bool
	DurationOptions []int
	Repertoire      []string
	SelectedMember  string
	ErrorMessage    string
}

type sessionRow struct {
	Date      string
	Minutes   int
	Practiced string
}

type memberLogPageData struct {
	Member       string
	Group        string
	Rows         []sessionRow
	TotalMinutes int
	Sessions     int
	JustLogged   bool
	ErrorMessage string
}

type leaderboardPageData struct {
	Rows         []logbook.MemberSummary
	GroupRows    []logbook.MemberSummary
	Grouped      bool
	TotalMinutes int
	Sessions     int
	ErrorMessage string
}

func (h *httpHandler) handleForm(c *gin.Context) {
	choir := h.logbook.Roster()
	c.HTML(http.StatusOK, "form.html", formPageData{
		Groups:          choir.Groups,
		Grouped:         choir.Grouped(),
		DurationOptions: h.logbook.DurationOptions(),
		Repertoire:      h.logbook.Repertoire(),
		SelectedMember:  c.Query("member"),
	})
}

func (h *httpHandler) handleSubmit(c *gin.Context) {
	request := logbook.SubmitRequest{
		Member:    strings.TrimSpace(c.PostForm("member")),
		Minutes:   parseMinutes(c.PostForm("minutes")),
		Practiced: c.PostFormArray("practiced"),
	}

	submitted, err := h.logbook.Submit(c.Request.Context(), h.issueNumber, request)
	if err != nil {
		h.renderSubmitFailure(c, request, err)
		return
	}

	location := "/log/" + url.PathEscape(submitted.Member) + "?" + redirectQuery(map[string]string{"logged": "1"})
	c.Redirect(http.StatusSeeOther, location)
}

// renderSubmitFailure keeps the form usable for a retry: the failure shows
// as a message on the page and nothing else changes.
func (h *httpHandler) renderSubmitFailure(c *gin.Context, request logbook.SubmitRequest, err error) {
	choir := h.logbook.Roster()
	data := formPageData{
		Groups:          choir.Groups,
		Grouped:         choir.Grouped(),
		DurationOptions: h.logbook.DurationOptions(),
		Repertoire:      h.logbook.Repertoire(),
		SelectedMember:  request.Member,
	}

	status := http.StatusInternalServerError
	data.ErrorMessage = "Noe gikk galt. Prøv igjen."
	switch {
	case isValidationFailure(err):
		status = http.StatusBadRequest
		data.ErrorMessage = "Ugyldig innsending: " + err.Error()
	case isAppendFailure(err):
		status = http.StatusBadGateway
		data.ErrorMessage = "Klarte ikke å lagre økten. Loggen er uendret — prøv igjen."
		h.logError("append rejected by remote", err, c)
	default:
		h.logError("submission failed", err, c)
	}

	c.HTML(status, "form.html", data)
}

func isValidationFailure(err error) bool {
	return errors.Is(err, roster.ErrUnknownMember) ||
		errors.Is(err, roster.ErrInvalidDuration) ||
		errors.Is(err, roster.ErrUnknownItem)
}

func (h *httpHandler) handleMemberLog(c *gin.Context) {
	member := c.Param("member")
	data := memberLogPageData{
		Member:     member,
		JustLogged: c.Query("logged") == "1",
	}
	if group, err := h.logbook.Roster().GroupOf(member); err == nil {
		data.Group = group
	}

	snapshot, err := h.logbook.Load(c.Request.Context(), h.issueNumber)
	if err != nil {
		h.logError("log load failed", err, c)
		data.ErrorMessage = "Fikk ikke hentet loggen akkurat nå."
		c.HTML(http.StatusBadGateway, "log.html", data)
		return
	}

	for _, e := range snapshot.MemberLog(member) {
		data.Rows = append(data.Rows, sessionRow{
			Date:      displayDate(e),
			Minutes:   e.Minutes,
			Practiced: strings.Join(e.Practiced, ", "),
		})
	}
	totals := snapshot.MemberTotals(member)
	data.TotalMinutes = totals.TotalMinutes
	data.Sessions = totals.Sessions

	c.HTML(http.StatusOK, "log.html", data)
}

func (h *httpHandler) handleLeaderboard(c *gin.Context) {
	data := leaderboardPageData{Grouped: h.logbook.Roster().Grouped()}

	snapshot, err := h.logbook.Load(c.Request.Context(), h.issueNumber)
	if err != nil {
		h.logError("log load failed", err, c)
		data.ErrorMessage = "Fikk ikke hentet loggen akkurat nå."
		c.HTML(http.StatusBadGateway, "leaderboard.html", data)
		return
	}

	data.Rows = snapshot.Leaderboard()
	if data.Grouped {
		data.GroupRows = snapshot.GroupTotals()
	}
	totals := snapshot.Totals()
	data.TotalMinutes = totals.TotalMinutes
	data.Sessions = totals.Sessions

	c.HTML(http.StatusOK, "leaderboard.html", data)
}

// displayDate prefers the submitted calendar day; old or damaged entries
// without one fall back to the timestamp's day, or a dash.
func displayDate(e entry.PracticeEntry) string {
	if e.Date != "" {
		return e.Date
	}
	if !e.Timestamp.IsZero() {
		return e.Timestamp.Format(entry.DateLayout)
	}
	return "–"
}
