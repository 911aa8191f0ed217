// SPDX-License-Identifier: MIT

// Package epg reads XMLTV programme guides and adapts programmes for recording.
package epg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	unorm "golang.org/x/text/unicode/norm"
)

// maxXMLSize bounds how much of an XMLTV document ReadXMLTV consumes.
const maxXMLSize = 50 * 1024 * 1024

type TV struct {
	XMLName   xml.Name    `xml:"tv"`
	Generator string      `xml:"generator-info-name,attr,omitempty"`
	Channels  []Channel   `xml:"channel"`
	Programs  []Programme `xml:"programme"`
}

type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
}

type Programme struct {
	Start   string `xml:"start,attr" json:"start"`
	Stop    string `xml:"stop,attr" json:"stop"`
	Channel string `xml:"channel,attr" json:"channel"`
	Title   Title  `xml:"title" json:"title"`
	Desc    string `xml:"desc,omitempty" json:"desc,omitempty"`
}

type Title struct {
	// Lang contains the language code for the title (optional).
	Lang string `xml:"lang,attr,omitempty" json:"lang,omitempty"`
	// Value is the character data of the title element.
	Value string `xml:",chardata" json:"value"`
}

// ReadXMLTV decodes an XMLTV document. Entity expansion is disabled.
func ReadXMLTV(r io.Reader) (*TV, error) {
	dec := xml.NewDecoder(io.LimitReader(r, maxXMLSize))
	dec.Strict = true
	dec.Entity = make(map[string]string)

	var doc TV
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}
	return &doc, nil
}

var (
	suffix = regexp.MustCompile(`\s+(hd|uhd|4k|austria|österreich|oesterreich|at|de|ch)$`)
	space  = regexp.MustCompile(`\s+`)
)

func normalize(s string) string {
	s = unorm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	// Lowercasing can produce new combining sequences.
	s = unorm.NFC.String(s)

	for {
		before := s
		s = suffix.ReplaceAllString(s, "")
		if s == before {
			break
		}
	}

	s = space.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NameKey generates a normalized key from a channel or title for matching.
func NameKey(s string) string { return normalize(s) }

// NameToID maps every normalized display name of tv's channels to the channel id.
func (tv *TV) NameToID() map[string]string {
	out := make(map[string]string, len(tv.Channels))
	for _, ch := range tv.Channels {
		if ch.ID == "" {
			continue
		}
		for _, displayName := range ch.DisplayName {
			if key := normalize(displayName); key != "" {
				out[key] = ch.ID
			}
		}
	}
	return out
}
