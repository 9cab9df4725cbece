package decode

import (
	"fmt"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

const (
	invalidDateSummary = "Uninitialized or invalid QDate"
	invalidTimeSummary = "Uninitialized or invalid QTime"

	// gregorianStart is the first Julian day of the Gregorian calendar,
	// October 15, 1582. Days before it convert through the Julian calendar.
	gregorianStart = 2299161

	msecsPerDay  = 86400000
	msecsPerHour = 3600000
	msecsPerMin  = 60000
	secsPerMin   = 60
)

// dateDecoder renders a QDate, stored as a single Julian day number.
type dateDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *dateDecoder) Summary() (string, error) {
	jd, err := d.e.mem.ReadU32(d.val.Addr)
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, d.val.Addr, err)
	}
	return dateString(jd), nil
}

func (d *dateDecoder) Children() (*Iterator, error) { return emptyIterator(), nil }
func (d *dateDecoder) Expandable() bool             { return false }
func (d *dateDecoder) Hint() qtpeek.Hint            { return qtpeek.HintNone }

// timeDecoder renders a QTime, stored as milliseconds since midnight.
type timeDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *timeDecoder) Summary() (string, error) {
	mds, err := d.e.readI32(d.val.Addr)
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, d.val.Addr, err)
	}
	return timeString(mds), nil
}

func (d *timeDecoder) Children() (*Iterator, error) { return emptyIterator(), nil }
func (d *timeDecoder) Expandable() bool             { return false }
func (d *timeDecoder) Hint() qtpeek.Hint            { return qtpeek.HintNone }

// dateTimeDecoder renders a QDateTime. The private object behind the d
// pointer has no structural debug info in stripped builds, so the date and
// time are read at offsets computed from the sizes of the preceding fields.
type dateTimeDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *dateTimeDecoder) Summary() (string, error) {
	e := d.e
	dAddr, err := e.dPointer(d.val)
	if err != nil {
		return "", err
	}

	dt := e.profile.DateTimePrivate
	if err := e.checkRef(d.val.TypeName, dAddr, dt.MustOffset("ref")); err != nil {
		return "", err
	}

	jd, err := e.mem.ReadU32(dAddr + uint64(dt.MustOffset("date")))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dAddr, err)
	}
	mds, err := e.readI32(dAddr + uint64(dt.MustOffset("time")))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dAddr, err)
	}

	return dateString(jd) + " " + timeString(mds), nil
}

func (d *dateTimeDecoder) Children() (*Iterator, error) { return emptyIterator(), nil }
func (d *dateTimeDecoder) Expandable() bool             { return false }
func (d *dateTimeDecoder) Hint() qtpeek.Hint            { return qtpeek.HintNone }

// dateString converts a Julian day number to "YYYY-MM-DD". Day 0 and the
// all-ones null marker mean an invalid or default-constructed date.
func dateString(julianDay uint32) string {
	if julianDay == 0 || julianDay == 0xffffffff {
		return invalidDateSummary
	}

	var y, m, day int64
	jd := int64(julianDay)
	if jd >= gregorianStart {
		// Gregorian proleptic conversion, Fliegel and Van Flandern.
		ell := jd + 68569
		n := (4 * ell) / 146097
		ell = ell - (146097*n+3)/4
		i := (4000 * (ell + 1)) / 1461001
		ell = ell - (1461*i)/4 + 31
		j := (80 * ell) / 2447
		day = ell - (2447*j)/80
		ell = j / 11
		m = j + 2 - 12*ell
		y = 100*(n-49) + i + ell
	} else {
		// Julian calendar conversion, Toendering. The historical calendar
		// has no year zero, hence the final step down.
		jd += 32082
		dd := (4*jd + 3) / 1461
		ee := jd - (1461*dd)/4
		mm := (5*ee + 2) / 153
		day = ee - (153*mm+2)/5 + 1
		m = mm + 3 - 12*(mm/10)
		y = dd - 4800 + mm/10
		if y <= 0 {
			y--
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, day)
}

// timeString converts milliseconds since midnight to "HH:MM:SS.mmm".
func timeString(mds int64) string {
	if mds < 0 || mds > msecsPerDay {
		return invalidTimeSummary
	}
	hour := mds / msecsPerHour
	minute := (mds % msecsPerHour) / msecsPerMin
	second := (mds / 1000) % secsPerMin
	msec := mds % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hour, minute, second, msec)
}
