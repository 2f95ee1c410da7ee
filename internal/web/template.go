package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tobycm/easyeda-wakatime/internal/status"
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
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
	"orNone": func(s string) string {
		if s == "" {
			return "none"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>EasyEDA Wakatime</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected, .SENT { color: green; }
.disconnected, .FAILED { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>EasyEDA Wakatime<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Activity</h2>
<table>
<tr><th>State</th><td id="state">{{.State}}</td></tr>
<tr><th>Last tick</th><td id="last-outcome" class="{{.LastOutcome}}">{{orNone (printf "%s" .LastOutcome)}}</td></tr>
<tr><th>Last interaction</th><td id="last-event">{{stamp .LastEvent}}</td></tr>
<tr><th>Last heartbeat</th><td id="last-heartbeat">{{stamp .LastHeartbeat}}</td></tr>
<tr><th>Delivery</th><td id="last-delivery">{{orNone .LastDelivery}}</td></tr>
<tr><th>Credentials</th><td>{{if .CredentialsSet}}set{{else}}missing{{end}}</td></tr>
</table>

<h2>Project</h2>
<table>
<tr><th>Name</th><td id="project-name">{{orNone .Project.FriendlyName}}</td></tr>
<tr><th>Editor</th><td id="project-editor">{{orNone (printf "%s" .Project.EditorType)}}</td></tr>
<tr><th>Entity</th><td id="project-entity">{{orNone .Project.EntityName}}</td></tr>
</table>

<h2>Tick Counts</h2>
<table>
<tr><th>Sent</th><td id="count-sent">{{.Counts.Sent}}</td></tr>
<tr><th>Failed</th><td id="count-failed">{{.Counts.Failed}}</td></tr>
<tr><th>Inactive</th><td id="count-inactive">{{.Counts.Inactive}}</td></tr>
<tr><th>No context</th><td id="count-no-context">{{.Counts.NoContext}}</td></tr>
<tr><th>No credentials</th><td id="count-no-credentials">{{.Counts.NoCredentials}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Journal</th><td>{{if .Config.Journal}}enabled{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Inactivity</th><td>{{.Config.InactivityMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function set(id, value) {
    var el = document.getElementById(id);
    if (el) el.textContent = value === undefined || value === "" ? "none" : value;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        set("state", s.state);
        set("last-outcome", s.last_outcome);
        document.getElementById("last-outcome").className = s.last_outcome || "";
        set("last-event", s.last_event || "never");
        set("last-heartbeat", s.last_heartbeat || "never");
        set("last-delivery", s.last_delivery);
        if (s.project) {
          set("project-name", s.project.name);
          set("project-editor", s.project.editor);
          set("project-entity", s.project.entity);
        }
        set("count-sent", s.tick_counts.sent);
        set("count-failed", s.tick_counts.failed);
        set("count-inactive", s.tick_counts.inactive);
        set("count-no-context", s.tick_counts.no_context);
        set("count-no-credentials", s.tick_counts.no_credentials);
      } catch (e) {}
    };
  }

  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
