package calendar

import (
	"strings"
	"unicode/utf8"
)

const maxLineOctets = 75

// ICS renders ev as a single-event VCALENDAR. Lines end in CRLF and are folded
// at 75 octets without splitting a UTF-8 sequence.
func ICS(ev Event, productID string) string {
	var b strings.Builder
	write := func(name, value string) {
		b.WriteString(fold(name + ":" + value))
		b.WriteString("\r\n")
	}
	write("BEGIN", "VCALENDAR")
	write("VERSION", "2.0")
	write("PRODID", productID)
	write("CALSCALE", "GREGORIAN")
	write("METHOD", "PUBLISH")
	write("BEGIN", "VEVENT")
	write("UID", escapeText(ev.UID))
	write("DTSTAMP", ev.Stamp.UTC().Format(utcBasic))
	write("DTSTART", ev.Start.UTC().Format(utcBasic))
	write("DTEND", ev.End.UTC().Format(utcBasic))
	write("SUMMARY", escapeText(ev.Summary))
	write("DESCRIPTION", escapeText(ev.Description))
	write("LOCATION", escapeText(ev.Location))
	write("END", "VEVENT")
	write("END", "VCALENDAR")
	return b.String()
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// fold splits a content line into 75-octet chunks; continuation lines start
// with a single space which counts toward their limit.
func fold(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}
	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}
