package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Config holds the OAuth credentials and target calendar
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
}

// Client mirrors installation jobs onto a Google Calendar
type Client struct {
	service    *calendar.Service
	calendarID string
	logger     *zap.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarScope},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Client{
		service:    svc,
		calendarID: calendarID,
		logger:     logger,
	}, nil
}

func toCalendarEvent(event service.CalendarEvent) *calendar.Event {
	return &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
		},
	}
}

// CreateEvent adds an installation appointment and returns its event ID
func (c *Client) CreateEvent(ctx context.Context, event service.CalendarEvent) (string, error) {
	created, err := c.service.Events.Insert(c.calendarID, toCalendarEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating calendar event: %w", err)
	}
	c.logger.Debug("calendar event created", zap.String("eventId", created.Id))
	return created.Id, nil
}

// UpdateEvent rewrites an existing appointment
func (c *Client) UpdateEvent(ctx context.Context, eventID string, event service.CalendarEvent) error {
	if _, err := c.service.Events.Update(c.calendarID, eventID, toCalendarEvent(event)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("updating calendar event %s: %w", eventID, err)
	}
	return nil
}

// DeleteEvent removes an appointment
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.service.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting calendar event %s: %w", eventID, err)
	}
	return nil
}
