package view

// Stage view templates. Each page template defines "content" and is wrapped
// by the shared layout.

const tmplLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/styles.css">
</head>
<body>
<header class="topbar">
  <span class="brand">Account Analysis</span>
  {{if .Run}}<span class="run-id">run {{.Run.ID}}</span>{{end}}
</header>
{{if and .Run .Run.Error}}
<div class="banner {{if isDetection .Run.FailureKind}}banner-warn{{else}}banner-error{{end}}">
  {{.Run.Error}}
</div>
{{end}}
<main>
{{template "content" .}}
</main>
<script src="/static/app.js"></script>
</body>
</html>`

const tmplUpload = `<section class="stage stage-upload" data-marker="upload">
  <h1>Upload tabular data</h1>
  <p class="hint">Only CSV files are accepted. Mixed batches are rejected whole.</p>
  <form id="upload-form" method="post" enctype="multipart/form-data"
        {{if .Run}}action="/api/runs/{{.Run.ID}}/files"{{end}}>
    <input type="file" name="files" multiple accept=".csv">
    <button type="submit">Add files</button>
  </form>
  {{if .Files}}
  <table class="file-list">
    <thead><tr><th>#</th><th>Name</th><th>Size</th><th></th></tr></thead>
    <tbody>
    {{range $i, $f := .Files}}
      <tr>
        <td>{{$i}}</td>
        <td>{{$f.Name}}</td>
        <td>{{fmtBytes $f.Size}}</td>
        <td><button class="remove" data-index="{{$i}}">remove</button></td>
      </tr>
    {{end}}
    </tbody>
  </table>
  <button id="start-analysis">Start analysis</button>
  {{else}}
  <p class="placeholder">No files staged yet.</p>
  {{end}}
  {{if .Recent}}
  <h2>Recent analyses</h2>
  <table class="recent-runs">
    <thead><tr><th>Started</th><th>Files</th><th>Outcome</th><th>Duration</th></tr></thead>
    <tbody>
    {{range .Recent}}
      <tr class="outcome-{{.Outcome}}">
        <td>{{fmtTime .StartedAt}}</td>
        <td>{{.FileCount}}</td>
        <td>{{.Outcome}}</td>
        <td>{{fmtDurationMs .DurationMs}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
  {{end}}
</section>`

const tmplLoading = `<section class="stage stage-loading" data-marker="loading"
  {{if .Run}}data-run="{{.Run.ID}}"{{end}}>
  <div class="spinner"></div>
  <h1>Working&hellip;</h1>
  {{if .Run}}<p class="hint">Stage: {{.Run.Stage}}</p>{{end}}
</section>`

const tmplDatabases = `<section class="stage stage-databases" data-marker="databases">
  <h1>Detected data domains</h1>
  {{range $i, $p := .Run.Profiles}}
  <article class="profile">
    <h2>{{$p.Name}}</h2>
    <div class="split">
      {{range $label, $pct := $p.DomainSplit}}
      <span class="split-item">{{$label}}: {{fmtPct $pct}}</span>
      {{end}}
    </div>
    <canvas class="domain-chart" id="chart-{{$i}}"></canvas>
    <script>
      // Bind one tick after markup insertion so the canvas exists.
      setTimeout(function () {
        window.bindDomainChart && window.bindDomainChart("chart-{{$i}}", {{chartJSON $p}});
      }, 0);
    </script>
    {{range $p.Explanations}}<p class="explanation">{{.}}</p>{{end}}
  </article>
  {{end}}
  <button id="continue" data-run="{{.Run.ID}}">Continue to column detection</button>
</section>`

const tmplColumns = `<section class="stage stage-columns" data-marker="columns">
  {{if isDetection .Run.FailureKind}}
  <h1>No date column found</h1>
  <p class="hint">The uploaded tables contain no recognizable account-open date.
  Analysis cannot continue; restart with different data.</p>
  <button id="restart" data-run="{{.Run.ID}}">Start over</button>
  {{else}}
  <h1>Detected columns</h1>
  {{with .Run.Detection}}
  <div class="candidates">
    <h2>Open-date candidates</h2>
    <ul>
    {{range .DateCandidates}}
      <li>{{.Table}}.{{.Column}} <span class="confidence">{{fmtPct .Confidence}}</span></li>
    {{end}}
    </ul>
    {{if .LoginCandidates}}
    <h2>Login-timestamp candidates</h2>
    <ul>
    {{range .LoginCandidates}}
      <li>{{.Table}}.{{.Column}} <span class="confidence">{{fmtPct .Confidence}}</span></li>
    {{end}}
    </ul>
    {{end}}
  </div>
  {{end}}
  <p class="chosen">Using <strong>{{.Run.OpenColumn}}</strong> as the open date and
  <strong>{{.Run.IDColumn}}</strong> as the identifier.</p>
  <button id="continue" data-run="{{.Run.ID}}">Run account analysis</button>
  {{end}}
</section>`

const tmplAnalysis = `<section class="stage stage-analysis" data-marker="analysis"
  data-run="{{.Run.ID}}">
  <div class="spinner"></div>
  <h1>Analyzing accounts&hellip;</h1>
  <p class="hint">Aging, logins and transactions are being aggregated remotely.</p>
</section>`

const tmplResults = `<section class="stage stage-results" data-marker="results"
  data-run="{{.Run.ID}}">
  <h1>Analysis results</h1>
  {{with .Run.Result}}
  <div class="cards">
    {{with .AgeAnalysis.Counts}}
    <div class="card">
      <h3>Age buckets</h3>
      <p>NEW {{index . "NEW"}} · ACTIVE {{index . "ACTIVE"}} · TRUSTED {{index . "TRUSTED"}}</p>
    </div>
    {{end}}
    {{with .InactiveCustomers}}
    <div class="card"><h3>Inactive customers</h3><p>{{.Count}}</p></div>
    {{end}}
    {{with .LoginMetrics}}
    <div class="card"><h3>Logins</h3>
      <p>{{.TotalLogins}} total · {{.ActiveUsers}} active users</p>
    </div>
    {{end}}
    {{with .SameDayAccounts}}
    <div class="card"><h3>Same-day multi-accounts</h3><p>{{.Count}}</p></div>
    {{end}}
  </div>

  {{if .MultiAccountHolders}}
  <h2>Multi-account holders</h2>
  <ul class="holders">
  {{range .MultiAccountHolders}}
    <li>{{.CustomerID}} — {{.AccountCount}} accounts</li>
  {{end}}
  </ul>
  {{end}}
  {{end}}

  <h2>Accounts</h2>
  <div class="table-filter" data-run="{{.Run.ID}}">
    {{range $f := filters}}
    <button class="filter {{if eq $f $.TableFilter}}active{{end}}" data-filter="{{$f}}">{{$f}}</button>
    {{end}}
  </div>
  <div id="account-table">
  {{template "accountTable" (tableData .TableRows .TableColumns .TableFilter)}}
  </div>

  {{with .Run.Result}}
  {{if .OpenDateTimeline}}{{template "timelineStrip" (strip "open" .OpenDateTimeline)}}{{end}}
  {{if .DailyLoginAnalysis}}{{template "timelineStrip" (strip "login" .DailyLoginAnalysis)}}{{end}}
  {{if .TransactionTimeline}}{{template "timelineStrip" (strip "transaction" .TransactionTimeline)}}{{end}}
  {{end}}
</section>`

// timelineStrip renders one timeline's day nodes with the boundary anchors
// on either end. Selection indices follow the controller contract: -1 first
// boundary, -2 last boundary, otherwise the zero-based day position.
const tmplTimelineStrip = `{{define "timelineStrip"}}
<div class="timeline" data-kind="{{.Kind}}">
  <h2>{{.Heading}}</h2>
  <div class="strip">
    {{if .Timeline.First}}
    <button class="day boundary" data-index="-1" id="tl-{{.Kind}}-first">
      first · {{.Timeline.First.Date}}
    </button>
    {{end}}
    {{range $i, $e := .Timeline.Entries}}
    <button class="day {{if eq $.Timeline.PeakDay $e.Date}}peak{{end}}"
            data-index="{{$i}}" id="tl-{{$.Kind}}-{{$i}}">
      {{$e.Date}} ({{$e.Total}})
    </button>
    {{end}}
    {{if .Timeline.Last}}
    <button class="day boundary" data-index="-2" id="tl-{{.Kind}}-last">
      last · {{.Timeline.Last.Date}}
    </button>
    {{end}}
  </div>
  <div class="detail" id="tl-{{.Kind}}-detail">
    <p class="placeholder">Select a day to see its events.</p>
  </div>
</div>
{{end}}`

// tmplTimelinePanel is the drill-down partial swapped into the detail
// surface on selection. A cleared or unresolved panel renders the
// placeholder again.
const tmplTimelinePanel = `{{if .Rendered}}
<div class="panel" data-anchor="{{.Anchor}}">
  <h3>{{.Header}}</h3>
  <ul class="events">
  {{range .Items}}
    <li class="{{if .Failed}}failed{{end}}">
      <span class="actor">{{.Actor}}</span>
      <span class="time">{{.TimeLabel}}</span>
      <span class="daypart">{{.DayPart}}</span>
      {{if .MultiEvent}}<span class="multi" title="multiple events by this actor today">●</span>{{end}}
      {{if .HasStatus}}
      <span class="status">{{if .Failed}}FAILED{{else}}PASSED{{end}}</span>
      <span class="reason">{{.StatusReason}}</span>
      {{end}}
    </li>
  {{end}}
  </ul>
</div>
{{else}}
<p class="placeholder">Select a day to see its events.</p>
{{end}}`

const tmplAccountTable = `{{if .Rows}}
<table class="accounts" data-filter="{{.Filter}}">
  <thead>
    <tr>
      {{range .Columns}}<th>{{.}}</th>{{end}}
      <th>group</th><th>meaning</th><th>action</th>
    </tr>
  </thead>
  <tbody>
  {{range $row := .Rows}}
    <tr>
      {{range $.Columns}}<td>{{cell $row .}}</td>{{end}}
      <td style="color: {{groupColor $row.Group}}">{{$row.Group}}</td>
      <td style="color: {{groupColor $row.Group}}">{{cell $row "meaning"}}</td>
      <td style="color: {{groupColor $row.Group}}">{{cell $row "recommended_action"}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{else}}
<p class="placeholder">No accounts in this bucket.</p>
{{end}}`
