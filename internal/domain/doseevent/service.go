package doseevent

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dosetrack/dosetrack/internal/domain/doctor"
	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/auth"
)

// delayInterval is how far a delayed dose slips.
const delayInterval = time.Hour

// rosterLister is the slice of the doctor registry the adherence
// report needs.
type rosterLister interface {
	ListPatients(ctx context.Context, doctorID uuid.UUID) ([]doctor.RosterEntry, error)
}

type Service struct {
	events Repository
	roster rosterLister
	loc    *time.Location
}

func NewService(events Repository, roster rosterLister, loc *time.Location) *Service {
	return &Service{events: events, roster: roster, loc: loc}
}

// ApplyAction applies a patient's response to one of their own dose
// events. Only the owning patient may act; finalized events reject
// every action.
func (s *Service) ApplyAction(ctx context.Context, actor auth.Actor, eventID uuid.UUID, action Action) (*DoseEvent, error) {
	if action != ActionComplete && action != ActionDelay {
		return nil, apperr.E(apperr.InvalidAction, "unknown action %q", action)
	}
	if actor.Role != auth.RolePatient {
		return nil, apperr.E(apperr.Forbidden, "only patients act on dose events")
	}

	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.PatientID != actor.ID {
		return nil, apperr.E(apperr.Forbidden, "dose event belongs to another patient")
	}
	if e.Terminal() {
		return nil, apperr.E(apperr.AlreadyFinalized, "dose event is already %s", terminalState(e))
	}

	var updated *DoseEvent
	var applied bool
	switch action {
	case ActionComplete:
		updated, applied, err = s.events.Complete(ctx, eventID)
	case ActionDelay:
		updated, applied, err = s.events.Delay(ctx, eventID, delayInterval)
	}
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race to a concurrent finalization.
		return nil, apperr.E(apperr.AlreadyFinalized, "dose event was finalized concurrently")
	}
	return updated, nil
}

func terminalState(e *DoseEvent) string {
	if e.IsCompleted {
		return "completed"
	}
	return "expired"
}

func (s *Service) view(e *DoseEvent) View {
	return View{
		DoseEvent: *e,
		Time:      e.ScheduledAt.In(s.loc).Format("15:04"),
	}
}

// ListByMonth groups all of a patient's events by calendar month of
// the clinic zone, newest month first. Missed counts are summed over
// pending events only: a terminal event's misses are frozen inside its
// completed/expired counter.
func (s *Service) ListByMonth(ctx context.Context, patientID uuid.UUID) ([]MonthGroup, error) {
	events, err := s.events.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*MonthGroup)
	for _, e := range events {
		month := e.ScheduledAt.In(s.loc).Format("2006-01")
		g, ok := groups[month]
		if !ok {
			g = &MonthGroup{Month: month}
			groups[month] = g
		}
		switch {
		case e.IsCompleted:
			g.Completed++
		case e.IsExpired:
			g.Expired++
		default:
			g.MissedTotal += e.MissedCount
		}
		g.Events = append(g.Events, s.view(e))
	}

	out := make([]MonthGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

// ListForToday returns the patient's events scheduled on today's civil
// date in the clinic zone, in time order.
func (s *Service) ListForToday(ctx context.Context, patientID uuid.UUID) ([]View, error) {
	now := time.Now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	events, err := s.events.ListForRange(ctx, patientID, start, end)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(events))
	for _, e := range events {
		views = append(views, s.view(e))
	}
	return views, nil
}

// Score computes the 0-10 adherence score. The formula is a preserved
// heuristic: missed events drag the score down proportionally, ongoing
// prescriptions lift it, fully dispensed ones cost half a point each.
func (s *Service) Score(ctx context.Context, patientID uuid.UUID) (float64, error) {
	events, err := s.events.ListByPatient(ctx, patientID)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	missed := 0
	for _, e := range events {
		if e.MissedCount > 0 {
			missed++
		}
	}
	active, completed, err := s.events.CountPrescriptions(ctx, patientID)
	if err != nil {
		return 0, err
	}

	score := 10 - float64(missed)/float64(len(events))*10 + float64(active) - float64(completed)*0.5
	if score < 0 {
		return 0, nil
	}
	if score > 10 {
		return 10, nil
	}
	return score, nil
}

// ScoresForDoctor reports the adherence score of every patient on the
// doctor's roster.
func (s *Service) ScoresForDoctor(ctx context.Context, doctorID uuid.UUID) ([]PatientScore, error) {
	roster, err := s.roster.ListPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	scores := make([]PatientScore, 0, len(roster))
	for _, entry := range roster {
		score, err := s.Score(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		scores = append(scores, PatientScore{
			PatientID: entry.ID,
			Name:      entry.Name,
			Score:     score,
		})
	}
	return scores, nil
}
