// SPDX-License-Identifier: MIT

package epg

import (
	"fmt"
	"strings"
	"time"
)

const (
	// xmltvLayout is the zoned XMLTV timestamp: YYYYMMDDHHMMSS +ZZZZ
	xmltvLayout = "20060102150405 -0700"
	bareLayout  = "20060102150405"
)

// ParseXMLTVTime parses "20060102150405 -0700" or the bare 14-digit form, which is read as UTC.
func ParseXMLTVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(bareLayout) {
		t, err := time.ParseInLocation(bareLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("xmltv time %q: %w", s, err)
		}
		return t, nil
	}
	t, err := time.Parse(xmltvLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("xmltv time %q: %w", s, err)
	}
	return t, nil
}

// FormatXMLTVTime formats t in the zoned XMLTV layout.
func FormatXMLTVTime(t time.Time) string {
	return t.Format(xmltvLayout)
}

// NewProgramme builds a programme running from start to stop on channel.
func NewProgramme(channel, title string, start, stop time.Time) Programme {
	return Programme{
		Start:   FormatXMLTVTime(start),
		Stop:    FormatXMLTVTime(stop),
		Channel: channel,
		Title:   Title{Value: title},
	}
}

// Validate reports whether the programme can be scheduled.
func (p Programme) Validate() error {
	if p.Channel == "" {
		return fmt.Errorf("programme %q: missing channel", p.Title.Value)
	}
	start, err := ParseXMLTVTime(p.Start)
	if err != nil {
		return err
	}
	stop, err := ParseXMLTVTime(p.Stop)
	if err != nil {
		return err
	}
	if !stop.After(start) {
		return fmt.Errorf("programme %q: stop %s is not after start %s", p.Title.Value, p.Stop, p.Start)
	}
	return nil
}

func (p Programme) ChannelID() string { return p.Channel }

// StartTime returns the parsed start, or the zero time when it does not parse.
func (p Programme) StartTime() time.Time {
	t, err := ParseXMLTVTime(p.Start)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StopTime returns the parsed stop, or the zero time when it does not parse.
func (p Programme) StopTime() time.Time {
	t, err := ParseXMLTVTime(p.Stop)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LengthMinutes is stop minus start in whole minutes, 0 if either bound is unusable.
func (p Programme) LengthMinutes() int {
	start, stop := p.StartTime(), p.StopTime()
	if start.IsZero() || stop.IsZero() || !stop.After(start) {
		return 0
	}
	return int(stop.Sub(start) / time.Minute)
}
