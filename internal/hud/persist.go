package hud

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/starford/jarvis/internal/models"
)

// Load restores the user's data from the store, falling back to demo data
// when nothing usable is stored or the store is unreachable.
func (s *Session) Load(ctx context.Context) error {
	d, err := s.store.Load(ctx, s.cfg.UserKey)
	if err != nil {
		s.log.Warn("hud: load failed, starting offline", slog.String("error", err.Error()))
	}
	return s.do(ctx, func() {
		s.offline = err != nil
		if d.Empty() {
			s.log.Info("hud: no stored data, loading demo workspace")
			settings := models.Settings{}
			if d != nil {
				settings = d.Settings
			}
			d = demoData(s.now())
			d.Settings = settings
		}
		s.tasks.Replace(d.Tasks)
		s.projects.Replace(d.Projects)
		s.memory.Replace(d.Memory)
		s.macros.Replace(d.Settings.LayoutMacros)
		s.settings = d.Settings
		s.logs = slices.Clone(d.SessionLogs)
		s.loaded = true
		s.commit(topicWorkspace | topicStatus)
	})
}

// userData builds the persistence document. Must run on the loop.
func (s *Session) userData() *models.UserData {
	settings := s.settings
	settings.LayoutMacros = s.macros.List()
	return &models.UserData{
		Tasks:       s.tasks.List(),
		Events:      s.tasks.Events(),
		Memory:      s.memory.List(),
		Projects:    s.projects.List(),
		Settings:    settings,
		SessionLogs: slices.Clone(s.logs),
	}
}

// scheduleSave hands the latest document to the saver without blocking.
// Only the loop sends on saveCh, so after draining a stale document the
// send always has room.
func (s *Session) scheduleSave() {
	select {
	case <-s.saveCh:
	default:
	}
	s.saveCh <- s.userData()
}

// RunSaver writes scheduled documents until ctx is cancelled, then flushes
// whatever is still pending. Failures flip the offline indicator and are
// otherwise ignored; in-memory state is never rolled back.
func (s *Session) RunSaver(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			select {
			case d := <-s.saveCh:
				flushCtx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
				s.save(flushCtx, d)
				cancel()
			default:
			}
			return nil
		case d := <-s.saveCh:
			saveCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
			s.save(saveCtx, d)
			cancel()
		}
	}
}

func (s *Session) save(ctx context.Context, d *models.UserData) {
	err := s.store.Save(ctx, s.cfg.UserKey, d)
	s.metrics.Saved(err == nil)
	if err != nil {
		s.log.Warn("hud: save failed", slog.String("error", err.Error()))
	}
	offline := err != nil
	// The loop may already be gone during shutdown; the flag no longer matters then.
	_ = s.do(context.Background(), func() {
		if s.offline != offline {
			s.offline = offline
			s.commit(topicStatus)
		}
	})
}

func demoData(now time.Time) *models.UserData {
	today := now.Format("2006-01-02")
	return &models.UserData{
		Tasks: []models.Task{{
			ID:       "t-1",
			Title:    "Calibrate Orbit Stabilizers",
			Priority: models.PriorityHigh,
			DueDate:  today,
			Details:  "Re-align thruster variance for atmospheric entry.",
			Subtasks: []models.Subtask{
				{ID: "st-1", Title: "Check fuel cells", Completed: true},
				{ID: "st-2", Title: "Run diagnostic alpha"},
			},
		}},
		Projects: []models.Project{{
			ID:    "p-1",
			Title: "Advanced Robotics",
			Chapters: []models.Chapter{{
				ID:       "c-1",
				Title:    "Kinematics",
				Progress: 50,
				Subtopics: []models.Subtopic{
					{ID: "s-1", Title: "Forward Kinematics", Status: models.StatusCompleted},
					{ID: "s-2", Title: "Inverse Kinematics", Status: models.StatusInProgress},
				},
			}},
			Metadata: &models.ProjectMetadata{Priority: models.PriorityHigh},
		}},
		Memory: []string{"Jarvis System Online", "Pepper Potts: Birthday next Tuesday"},
	}
}
