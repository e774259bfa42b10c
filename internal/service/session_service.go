package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
)

const calendarProductID = "-//greve-ensta//attendance sessions//FR"

var (
	ErrInvalidCalendarDate = errors.New("日期格式应为 YYYY-MM-DD")
)

// SessionService 签到时段查询业务接口
type SessionService interface {
	Current(ctx context.Context) (*dto.CurrentSessionResponse, error)
	// CalendarICS 导出指定日期（YYYY-MM-DD，空为今天）四个签到时段的 iCalendar
	CalendarICS(ctx context.Context, date string) (string, error)
}

type sessionService struct {
	calendar *SessionCalendar
	gate     SessionGateService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(calendar *SessionCalendar, gate SessionGateService, logger *zap.Logger) SessionService {
	return &sessionService{
		calendar: calendar,
		gate:     gate,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── Current ──────────────────────

func (s *sessionService) Current(ctx context.Context) (*dto.CurrentSessionResponse, error) {
	now := s.now().In(s.calendar.Location())
	resp := &dto.CurrentSessionResponse{ServerNow: now.Format(time.RFC3339)}

	session, ok := s.calendar.SessionFor(now)
	if !ok {
		return resp, nil
	}

	enabled, err := s.gate.IsEnabled(ctx, session)
	if err != nil {
		return nil, err
	}

	w, _ := WindowOf(session)
	startAt, endAt := s.calendar.Bounds(now, w)
	resp.Active = true
	resp.Session = session.String()
	resp.Label = w.Label
	resp.StartsAt = startAt.Format(time.RFC3339)
	resp.EndsAt = endAt.Format(time.RFC3339)
	resp.IsEnabled = enabled
	return resp, nil
}

// ────────────────────── CalendarICS ──────────────────────

func (s *sessionService) CalendarICS(ctx context.Context, raw string) (string, error) {
	date := s.calendar.DayOf(s.now())
	if raw = strings.TrimSpace(raw); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, s.calendar.Location())
		if err != nil {
			return "", ErrInvalidCalendarDate
		}
		date = d
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	stamp := s.now().UTC()

	for _, w := range s.calendar.Windows() {
		enabled, err := s.gate.IsEnabled(ctx, w.Session)
		if err != nil {
			s.logger.Error("导出日历时读取时段开关失败", zap.String("session", w.Session.String()), zap.Error(err))
			return "", err
		}

		startAt, endAt := s.calendar.Bounds(date, w)
		state := "开放签到"
		if !enabled {
			state = "管理员已关闭"
		}

		evt := cal.AddEvent(fmt.Sprintf("%s-%s@greve-ensta", w.Session, date.Format("20060102")))
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(startAt)
		evt.SetEndAt(endAt)
		evt.SetSummary(fmt.Sprintf("签到 %s (%s)", w.Session, w.Label))
		evt.SetDescription(state)
	}

	return cal.Serialize(), nil
}
