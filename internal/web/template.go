package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rack-io/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"lastEvent": func(c status.InputChannel) string {
		if c.Events == 0 {
			return "—"
		}
		return c.LastEvent.String()
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
	"interlock": func(i int, partner uint8) string {
		if int(partner) == i {
			return "—"
		}
		return fmt.Sprintf("%d", partner)
	},
	"timer": func(secs uint16) string {
		if secs == 0 {
			return "—"
		}
		return fmt.Sprintf("%ds", secs)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Config.Device}}</title>
<style>
body { font-family: monospace; max-width: 800px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.disabled { color: #bbb; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>{{.Config.Device}}</h1>

<h2>Inputs</h2>
<table>
<tr><th>Ch</th><th>Type</th><th>Last event</th><th>At</th><th>Events</th></tr>
{{range $i, $c := .Inputs}}<tr{{if $c.Disabled}} class="disabled"{{end}}><td>{{$i}}</td><td>{{$c.Type}}{{if $c.Invert}} (inverted){{end}}{{if $c.Disabled}} (disabled){{end}}</td><td>{{lastEvent $c}}</td><td>{{stamp $c.LastEventAt}}</td><td>{{$c.Events}}</td></tr>
{{end}}</table>

<h2>Outputs</h2>
<table>
<tr><th>Ch</th><th>Type</th><th>State</th><th>Interlock</th><th>Timer</th><th>Changes</th></tr>
{{range $i, $c := .Outputs}}<tr><td>{{$i}}</td><td>{{$c.Type}}</td><td class="{{if eq ($c.Level.String) "on"}}on{{else}}off{{end}}">{{$c.Level}}</td><td>{{interlock $i $c.Interlock}}</td><td>{{timer $c.TimerSecs}}</td><td>{{$c.Changes}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Input events</th><td>{{.Counts.InputEvents}}</td></tr>
<tr><th>Output changes</th><td>{{.Counts.OutputChanges}}</td></tr>
<tr><th>Commands</th><td>{{.Counts.Commands}}</td></tr>
<tr><th>Rejected commands</th><td>{{.Counts.BadCommands}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{stamp .StartTime}}</td></tr>
<tr><th>Driver</th><td>{{.Config.Driver}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatSecs 0}}disabled{{else}}{{.Config.HeartbeatSecs}}s{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
