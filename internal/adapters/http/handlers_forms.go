package web

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/membershipplan"
	"gymdesk/internal/domain/record"
)

var errBadNumber = errors.New("enter a number")

// --- Classes ---

type classFormPage struct {
	Class  fitnessclass.FitnessClass
	Action string
	Error  string
}

// classPayload is the write body for a class. Server-owned fields are left out.
func classPayload(c fitnessclass.FitnessClass) map[string]any {
	return map[string]any{
		"name":        strings.TrimSpace(c.Name),
		"description": c.Description,
		"trainer":     c.Trainer,
		"location":    c.Location,
		"start_time":  c.StartTime.UTC().Format(time.RFC3339),
		"end_time":    c.EndTime.UTC().Format(time.RFC3339),
		"capacity":    c.Capacity,
		"is_active":   c.IsActive,
	}
}

// parseClassForm reads the class form. Times are entered in the display zone.
func parseClassForm(r *http.Request, loc *time.Location) (fitnessclass.FitnessClass, error) {
	c := fitnessclass.FitnessClass{
		ID:          record.ID(r.PathValue("id")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Trainer:     strings.TrimSpace(r.FormValue("trainer")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		IsActive:    r.FormValue("is_active") != "",
	}
	var err error
	if c.StartTime, err = parseInputTime(r.FormValue("start_time"), loc); err != nil {
		return c, fmt.Errorf("start time: %w", err)
	}
	if c.EndTime, err = parseInputTime(r.FormValue("end_time"), loc); err != nil {
		return c, fmt.Errorf("end time: %w", err)
	}
	if c.Capacity, err = strconv.Atoi(strings.TrimSpace(r.FormValue("capacity"))); err != nil {
		return c, fmt.Errorf("capacity: %w", errBadNumber)
	}
	return c, c.Validate()
}

func parseInputTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(inputDateTimeLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, errors.New("enter a date and time")
	}
	return t, nil
}

// handleClassForm handles GET /classes/new and GET /classes/{id}/edit
func handleClassForm(w http.ResponseWriter, r *http.Request) {
	page := classFormPage{Action: "/classes", Class: fitnessclass.FitnessClass{Capacity: 20, IsActive: true}}
	if id := r.PathValue("id"); id != "" {
		cls, _, err := recordsFor(r).Classes.Get(r.Context(), id)
		if err != nil {
			backendFailed(w, r, err, "/classes")
			return
		}
		page.Class = cls
		page.Action = "/classes/" + id
	}
	renderTemplate(w, r, "class_form.html", page)
}

// handleClassCreate handles POST /classes
func handleClassCreate(w http.ResponseWriter, r *http.Request) {
	saveClass(w, r, "")
}

// handleClassUpdate handles POST /classes/{id}
func handleClassUpdate(w http.ResponseWriter, r *http.Request) {
	saveClass(w, r, r.PathValue("id"))
}

func saveClass(w http.ResponseWriter, r *http.Request, id string) {
	action := "/classes"
	if id != "" {
		action += "/" + id
	}
	c, err := parseClassForm(r, app.Export.Formatter.Loc)
	if err != nil {
		renderTemplateStatus(w, r, http.StatusBadRequest, "class_form.html", classFormPage{Class: c, Action: action, Error: err.Error()})
		return
	}

	rec := recordsFor(r)
	var saved fitnessclass.FitnessClass
	if id == "" {
		saved, err = app.Backend.Classes.Create(r.Context(), rec.Token(), classPayload(c))
	} else {
		saved, err = app.Backend.Classes.Update(r.Context(), rec.Token(), id, classPayload(c))
	}
	if err != nil {
		backendFailed(w, r, err, "/classes")
		return
	}
	if saved.RecordID() != "" {
		rec.Set.Classes.Put(saved)
	} else {
		rec.Set.Classes.InvalidateList()
	}
	slog.Info("record_event", "event", "class_saved", "id", saved.RecordID(), "by", rec.User().Email)
	redirectWithFlash(w, r, "/classes", Flash{Kind: FlashSuccess, Message: c.Name + " saved."})
}

// --- Plans ---

type planFormPage struct {
	Plan   membershipplan.MembershipPlan
	Action string
	Error  string
}

func planPayload(p membershipplan.MembershipPlan) map[string]any {
	return map[string]any{
		"name":          strings.TrimSpace(p.Name),
		"description":   p.Description,
		"price_cents":   p.PriceCents,
		"currency":      p.Currency,
		"duration_days": p.DurationDays,
		"is_active":     p.IsActive,
	}
}

// parseCents reads "49.99" as 4999.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errBadNumber
	}
	return int64(math.Round(v * 100)), nil
}

func parsePlanForm(r *http.Request, defaultCurrency string) (membershipplan.MembershipPlan, error) {
	p := membershipplan.MembershipPlan{
		ID:          record.ID(r.PathValue("id")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Currency:    strings.ToUpper(strings.TrimSpace(r.FormValue("currency"))),
		IsActive:    r.FormValue("is_active") != "",
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	var err error
	if p.PriceCents, err = parseCents(r.FormValue("price")); err != nil {
		return p, fmt.Errorf("price: %w", err)
	}
	if p.DurationDays, err = strconv.Atoi(strings.TrimSpace(r.FormValue("duration_days"))); err != nil {
		return p, fmt.Errorf("duration: %w", errBadNumber)
	}
	return p, p.Validate()
}

// handlePlanForm handles GET /plans/new and GET /plans/{id}/edit
func handlePlanForm(w http.ResponseWriter, r *http.Request) {
	page := planFormPage{Action: "/plans", Plan: membershipplan.MembershipPlan{DurationDays: 30, IsActive: true, Currency: app.Export.Formatter.Currency}}
	if id := r.PathValue("id"); id != "" {
		plan, _, err := recordsFor(r).Plans.Get(r.Context(), id)
		if err != nil {
			backendFailed(w, r, err, "/plans")
			return
		}
		page.Plan = plan
		page.Action = "/plans/" + id
	}
	renderTemplate(w, r, "plan_form.html", page)
}

// handlePlanCreate handles POST /plans
func handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	savePlan(w, r, "")
}

// handlePlanUpdate handles POST /plans/{id}
func handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	savePlan(w, r, r.PathValue("id"))
}

func savePlan(w http.ResponseWriter, r *http.Request, id string) {
	action := "/plans"
	if id != "" {
		action += "/" + id
	}
	p, err := parsePlanForm(r, app.Export.Formatter.Currency)
	if err != nil {
		renderTemplateStatus(w, r, http.StatusBadRequest, "plan_form.html", planFormPage{Plan: p, Action: action, Error: err.Error()})
		return
	}

	rec := recordsFor(r)
	var saved membershipplan.MembershipPlan
	if id == "" {
		saved, err = app.Backend.Plans.Create(r.Context(), rec.Token(), planPayload(p))
	} else {
		saved, err = app.Backend.Plans.Update(r.Context(), rec.Token(), id, planPayload(p))
	}
	if err != nil {
		backendFailed(w, r, err, "/plans")
		return
	}
	if saved.RecordID() != "" {
		rec.Set.Plans.Put(saved)
	} else {
		rec.Set.Plans.InvalidateList()
	}
	slog.Info("record_event", "event", "plan_saved", "id", saved.RecordID(), "by", rec.User().Email)
	redirectWithFlash(w, r, "/plans", Flash{Kind: FlashSuccess, Message: p.Name + " saved."})
}

// --- Feedback ---

type feedbackFormPage struct {
	Feedback feedback.Feedback
	ClassID  string
	Classes  []fitnessclass.FitnessClass
	Error    string
}

// handleFeedbackForm handles GET /feedback/new
func handleFeedbackForm(w http.ResponseWriter, r *http.Request) {
	page := feedbackFormPage{Feedback: feedback.Feedback{Rating: 5}, ClassID: r.URL.Query().Get("class")}
	page.Classes = feedbackClasses(r)
	renderTemplate(w, r, "feedback_form.html", page)
}

// feedbackClasses lists classes for the optional "about" select. A backend
// failure leaves the select empty; general feedback still works.
func feedbackClasses(r *http.Request) []fitnessclass.FitnessClass {
	classes, err := recordsFor(r).Classes.List(r.Context())
	if err != nil {
		slog.Warn("feedback_classes_unavailable", "error", err.Error())
		return nil
	}
	return classes
}

// handleFeedbackCreate handles POST /feedback/new
func handleFeedbackCreate(w http.ResponseWriter, r *http.Request) {
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	f := feedback.Feedback{Rating: rating, Comment: strings.TrimSpace(r.FormValue("comment"))}
	classID := strings.TrimSpace(r.FormValue("fitness_class"))
	if err := f.Validate(); err != nil {
		renderTemplateStatus(w, r, http.StatusBadRequest, "feedback_form.html", feedbackFormPage{
			Feedback: f, ClassID: classID, Classes: feedbackClasses(r), Error: err.Error(),
		})
		return
	}

	body := map[string]any{"rating": f.Rating, "comment": f.Comment}
	if classID != "" {
		body["fitness_class"] = classID
	}
	rec := recordsFor(r)
	created, err := app.Backend.Feedback.Create(r.Context(), rec.Token(), body)
	if err != nil {
		backendFailed(w, r, err, "/feedback/new")
		return
	}
	if created.RecordID() != "" {
		rec.Set.Feedback.Put(created)
	}
	slog.Info("record_event", "event", "feedback_created", "rating", f.Rating, "by", rec.User().Email)
	redirectWithFlash(w, r, "/dashboard", Flash{Kind: FlashSuccess, Message: "Thanks for your feedback."})
}
