// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import "fmt"

// Platform identifies the meeting platform that originated a webhook.
type Platform string

const (
	PlatformZoom           Platform = "zoom"
	PlatformGoogleMeet     Platform = "google_meet"
	PlatformMicrosoftTeams Platform = "microsoft_teams"
)

// ParsePlatform converts a string into a Platform, rejecting unknown values.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformZoom, PlatformGoogleMeet, PlatformMicrosoftTeams:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unsupported platform: %q", s)
}

// IsValid reports whether the platform is one of the supported values.
func (p Platform) IsValid() bool {
	_, err := ParsePlatform(string(p))
	return err == nil
}

func (p Platform) String() string {
	return string(p)
}
