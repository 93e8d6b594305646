package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ca-srg/tokenmon/domain"
	"github.com/ca-srg/tokenmon/domain/repository"
	"github.com/ca-srg/tokenmon/infrastructure/config"
)

// abbreviationZones maps common zone abbreviations to the region they are used in.
// Regions are DST-aware, so "PST" in July resolves to Pacific daylight time.
var abbreviationZones = map[string]string{
	"ADT":  "America/Halifax",
	"AEDT": "Australia/Sydney",
	"AEST": "Australia/Sydney",
	"AKDT": "America/Juneau",
	"AKST": "America/Juneau",
	"ART":  "America/Argentina/Buenos_Aires",
	"AST":  "America/Halifax",
	"BDT":  "Asia/Dhaka",
	"BRST": "America/Sao_Paulo",
	"BRT":  "America/Sao_Paulo",
	"BST":  "Europe/London",
	"CAT":  "Africa/Harare",
	"CDT":  "America/Chicago",
	"CEST": "Europe/Paris",
	"CET":  "Europe/Paris",
	"CLST": "America/Santiago",
	"CLT":  "America/Santiago",
	"COT":  "America/Bogota",
	"CST":  "America/Chicago",
	"EAT":  "Africa/Addis_Ababa",
	"EDT":  "America/New_York",
	"EEST": "Europe/Athens",
	"EET":  "Europe/Athens",
	"EST":  "America/New_York",
	"GMT":  "GMT",
	"GST":  "Asia/Dubai",
	"HKT":  "Asia/Hong_Kong",
	"HST":  "Pacific/Honolulu",
	"ICT":  "Asia/Bangkok",
	"IRST": "Asia/Tehran",
	"IST":  "Asia/Kolkata",
	"JST":  "Asia/Tokyo",
	"KST":  "Asia/Seoul",
	"MDT":  "America/Denver",
	"MSK":  "Europe/Moscow",
	"MST":  "America/Denver",
	"NZDT": "Pacific/Auckland",
	"NZST": "Pacific/Auckland",
	"PDT":  "America/Los_Angeles",
	"PET":  "America/Lima",
	"PHT":  "Asia/Manila",
	"PKT":  "Asia/Karachi",
	"PST":  "America/Los_Angeles",
	"SGT":  "Asia/Singapore",
	"UTC":  "UTC",
	"WAT":  "Africa/Lagos",
	"WEST": "Europe/Lisbon",
	"WET":  "Europe/Lisbon",
	"WIB":  "Asia/Jakarta",
}

// GMT+9, UTC-03:30, GMT+0530
var offsetAbbreviation = regexp.MustCompile(`^(?:GMT|UTC)([+-])(\d{1,2})(?::?(\d{2}))?$`)

// TimezoneServiceImpl implements the TimezoneService interface
type TimezoneServiceImpl struct {
	logger          domain.Logger
	defaultLocation *time.Location

	cacheMu sync.RWMutex
	cache   map[string]*time.Location
}

// NewTimezoneServiceImpl creates a new instance of TimezoneServiceImpl.
// An unknown default zone falls back to config.DefaultTimezone.
func NewTimezoneServiceImpl(defaultZone string, logger domain.Logger) *TimezoneServiceImpl {
	s := &TimezoneServiceImpl{
		logger: logger,
		cache:  make(map[string]*time.Location),
	}

	loc, ok := s.ResolveIdentifier(defaultZone)
	if !ok {
		if defaultZone != "" {
			logger.Warn(context.Background(), "Failed to load configured timezone, using fallback",
				domain.NewField("timezone", defaultZone),
				domain.NewField("fallback", config.DefaultTimezone))
		}
		loc, ok = s.ResolveIdentifier(config.DefaultTimezone)
		if !ok {
			loc = time.UTC
		}
	}
	s.defaultLocation = loc
	return s
}

// DefaultLocation returns the zone used when a phrase names none
func (s *TimezoneServiceImpl) DefaultLocation() *time.Location {
	return s.defaultLocation
}

// LocationFor resolves name as an identifier, falling back to the default location
func (s *TimezoneServiceImpl) LocationFor(name string) *time.Location {
	if loc, ok := s.ResolveIdentifier(name); ok {
		return loc
	}
	return s.defaultLocation
}

// ResolveIdentifier looks up an IANA zone identifier.
// "Local" and the empty string are rejected so results never depend on the host.
func (s *TimezoneServiceImpl) ResolveIdentifier(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "Local") {
		return nil, false
	}

	s.cacheMu.RLock()
	loc, ok := s.cache[name]
	s.cacheMu.RUnlock()
	if ok {
		return loc, loc != nil
	}

	loaded, err := time.LoadLocation(name)
	if err != nil {
		loaded = nil
	}

	s.cacheMu.Lock()
	s.cache[name] = loaded
	s.cacheMu.Unlock()

	return loaded, loaded != nil
}

// ResolveAbbreviation looks up a zone abbreviation such as "KST" or an offset such as "GMT+9"
func (s *TimezoneServiceImpl) ResolveAbbreviation(abbr string) (*time.Location, bool) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if abbr == "" {
		return nil, false
	}

	if name, ok := abbreviationZones[abbr]; ok {
		return s.ResolveIdentifier(name)
	}

	m := offsetAbbreviation.FindStringSubmatch(abbr)
	if m == nil {
		return nil, false
	}
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	if hours > 14 || minutes > 59 {
		return nil, false
	}
	offset := hours*3600 + minutes*60
	if m[1] == "-" {
		offset = -offset
	}
	return time.FixedZone(abbr, offset), true
}

// GetTimezoneInfo returns timezone information for logging/metrics
func (s *TimezoneServiceImpl) GetTimezoneInfo(loc *time.Location, at time.Time) repository.TimezoneInfo {
	if loc == nil {
		loc = s.defaultLocation
	}

	local := at.In(loc)
	_, offset := local.Zone()

	return repository.TimezoneInfo{
		Name:          loc.String(),
		Offset:        formatOffset(offset),
		OffsetSeconds: offset,
		IsDST:         local.IsDST(),
	}
}

// formatOffset formats an offset as +HH:MM or -HH:MM
func formatOffset(offset int) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
}
