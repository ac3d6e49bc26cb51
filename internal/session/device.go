package session

import (
	"fmt"

	"github.com/mssola/useragent"
)

// ParseDevice derives a display-friendly device description from a raw
// User-Agent header. Unknown agents degrade to "Unknown device".
func ParseDevice(rawUA string) Device {
	if rawUA == "" {
		return Device{Label: "Unknown device"}
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	d := Device{
		Browser: browser,
		OS:      os,
		Mobile:  ua.Mobile(),
	}
	switch {
	case browser != "" && os != "":
		d.Label = fmt.Sprintf("%s on %s", browser, os)
	case browser != "":
		d.Label = browser
	case os != "":
		d.Label = os
	default:
		d.Label = "Unknown device"
	}
	return d
}
