package health

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderDashboardHTML returns the status page served at GET /.
func RenderDashboardHTML(health CollectResult) string {
	b, _ := json.Marshal(health)
	jsonStr := string(b)
	// Escape for embedding in a JS template literal: \ ` $
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")
	jsonStr = strings.ReplaceAll(jsonStr, "</", "<\\/")

	lastReqMethod, lastReqPath, lastReqIP := "-", "-", "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			lastReqMethod = v
		}
		if v, ok := m["path"].(string); ok {
			lastReqPath = v
		}
		if v, ok := m["ip"].(string); ok {
			lastReqIP = v
		}
	}

	headline := "All Systems Operational"
	if health.Status != "ok" {
		headline = "System Issues Detected"
	}

	var deps strings.Builder
	for _, name := range []string{"database", "redis", "frontend"} {
		d, ok := health.Dependencies[name]
		if !ok {
			continue
		}
		class := "err"
		if d.Status == "connected" || d.Status == "reachable" {
			class = "ok"
		}
		ping := "?"
		if p, ok := d.PingMs.(*int64); ok && p != nil {
			ping = fmt.Sprint(*p)
		}
		fmt.Fprintf(&deps, `<div class="row"><span>%s</span><span id="pill-%s" class="pill %s"><span class="dot"></span><span id="ping-%s">%s ms</span></span></div>`+"\n",
			dependencyLabel(name), name, class, name, ping)
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>TideChain · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --tide: #0E6BA8; --deep: #0A2540; --mangrove: #2E8B57; --bg: #F4F8FB; --muted: #64748b; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--deep); font-family: system-ui, sans-serif; margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
    .container { width: 100%; max-width: 1000px; padding: 0 20px; }
    h1 { font-size: clamp(28px, 5vw, 52px); font-weight: 900; letter-spacing: -2px; text-align: center; margin: 0 0 8px; color: var(--tide); }
    h1.issue { color: #B91C1C; }
    .subtext { text-align: center; color: var(--muted); font-weight: 700; margin-bottom: 28px; }
    .card { background: #fff; border-radius: 24px; box-shadow: 0 20px 60px -20px rgba(14,107,168,0.2); overflow: hidden; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 36px; border-right: 1px solid rgba(0,0,0,0.05); }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: #94a3b8; margin-bottom: 20px; }
    .big { font-size: 38px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid rgba(0,0,0,0.03); font-size: 14px; font-weight: 700; }
    .pill { padding: 4px 10px; border-radius: 10px; font-size: 11px; font-weight: 900; display: flex; align-items: center; gap: 6px; }
    .ok { background: rgba(46,139,87,0.1); color: var(--mangrove); }
    .err { background: rgba(239,68,68,0.1); color: #EF4444; }
    .dot { width: 7px; height: 7px; border-radius: 50%; background: currentColor; }
    .footer { background: rgba(10,37,64,0.03); padding: 16px 36px; display: flex; justify-content: space-between; font-family: monospace; font-size: 13px; }
    .actions { margin-top: 24px; text-align: center; }
    .actions a { color: var(--tide); font-weight: 800; margin: 0 12px; }
    @media (max-width: 900px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline"` + headlineClass(health.Status) + `>` + headline + `</h1>
    <p class="subtext">Blue carbon registry API · live status</p>
    <div class="card">
      <div class="grid">
        <div class="col">
          <div class="label">Traffic</div>
          <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
          <div class="row"><span>Successful</span><span id="success-count">` + fmt.Sprint(health.Traffic.SuccessCount) + `</span></div>
          <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
          <div class="row"><span>Success Rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
          <div class="row"><span>Avg Latency</span><span id="avg-time">` + fmt.Sprint(health.Traffic.AvgResponseTime) + `ms</span></div>
        </div>
        <div class="col">
          <div class="label">Runtime</div>
          <div class="big" id="uptime">` + fmt.Sprint(health.Runtime.UptimeSeconds) + `s</div>
          <div class="row"><span>Heap In Use</span><span id="mem-heap">` + fmt.Sprint(health.Runtime.Memory.HeapUsed) + ` MB</span></div>
          <div class="row"><span>Allocated</span><span>` + fmt.Sprint(health.Runtime.Memory.Alloc) + ` MB</span></div>
          <div class="row"><span>Goroutines</span><span id="goroutines">` + fmt.Sprint(health.Runtime.Goroutines) + `</span></div>
          <div class="row"><span>Platform</span><span style="font-size:10px">` + html.EscapeString(health.Runtime.Platform) + `</span></div>
        </div>
        <div class="col">
          <div class="label">Connectivity</div>
          ` + deps.String() + `
        </div>
      </div>
      <div class="footer">
        <div>LAST INBOUND <b id="req-method">` + html.EscapeString(lastReqMethod) + `</b></div>
        <div id="req-path">` + html.EscapeString(lastReqPath) + `</div>
        <div id="req-ip">` + html.EscapeString(lastReqIP) + `</div>
      </div>
    </div>
    <div class="actions"><a href="/health/json">/health/json</a><a href="/health/errors">/health/errors</a><a href="/metrics">/metrics</a></div>
  </div>
  <script>
    const initial = JSON.parse(` + "`" + jsonStr + "`" + `);
    const render = (d) => {
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('success-count').innerText = d.traffic.successCount;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('uptime').innerText = d.runtime.uptimeSeconds + 's';
      document.getElementById('goroutines').innerText = d.runtime.goroutines;
      const hl = document.getElementById('headline');
      hl.innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      hl.className = d.status === 'ok' ? '' : 'issue';
    };
    render(initial);
    let left = 3;
    const timer = setInterval(async () => {
      if (left-- <= 0) { clearInterval(timer); return; }
      try { const r = await fetch('/health/json'); render(await r.json()); } catch (e) {}
    }, 10000);
  </script>
</body>
</html>`
}

func headlineClass(status string) string {
	if status == "ok" {
		return ""
	}
	return ` class="issue"`
}

func dependencyLabel(name string) string {
	switch name {
	case "database":
		return "Database"
	case "redis":
		return "Redis Cache"
	case "frontend":
		return "Frontend"
	}
	return name
}
