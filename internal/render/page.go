package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/status"
)

// Button is the translate action's state.
type Button struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// Choice is one entry of a select control.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// PageState is everything outside the two panels that the page shows.
type PageState struct {
	Title         string
	FileLabel     string
	Status        status.Message
	Previews      []intake.Preview
	Modal         *intake.Preview
	Button        Button
	ExportVisible bool
	ModePrompt    bool
	Languages     []Choice
	Models        []Choice
}

type pageData struct {
	PageState
	Original   panelData
	Translated panelData
}

type panelData struct {
	PanelState
	Markup template.HTML
}

// Backend markup is injected wholesale; all other text goes through
// html/template escaping.
func toPanelData(p PanelState) panelData {
	return panelData{PanelState: p, Markup: template.HTML(p.Markup)}
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"px": func(n int) template.CSS { return template.CSS(fmt.Sprintf("min-height: %dpx", n)) },
}).Parse(pageHTML))

// Page writes the full document for the current view.
func (v *View) Page(w io.Writer, st PageState) error {
	snap := v.Snapshot()
	if st.Title == "" {
		st.Title = "panetrans"
	}
	data := pageData{
		PageState:  st,
		Original:   toPanelData(snap.Original),
		Translated: toPanelData(snap.Translated),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>.highlighted{background:#fff3cd}</style>
</head>
<body>
<header>
  <form id="upload" method="post" action="/api/files" enctype="multipart/form-data">
    <input type="file" name="files" multiple>
    <button type="submit">Select</button>
  </form>
  <span id="selectedFileName">{{.FileLabel}}</span>
  <select id="targetLang">{{range .Languages}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
  <select id="aiModel">{{range .Models}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
  <button id="translateBtn" data-action="translate"{{if not .Button.Enabled}} disabled{{end}}>{{.Button.Label}}</button>
</header>
{{if .Status.Visible}}<div id="statusMessage" class="status-message status-{{.Status.Kind}}">{{.Status.Text}}</div>{{end}}
<div id="imagePreviewContainer">
{{range .Previews}}  <div class="image-preview-item">
    <img src="/api/images/{{.Index}}" alt="{{.Caption}}" data-action="open_preview" data-index="{{.Index}}">
    <div class="preview-number">{{.Index}}</div>
    <div class="preview-remove" data-action="remove_image" data-index="{{.Index}}" title="Remove">×</div>
  </div>
{{end}}</div>
{{if .ModePrompt}}<div id="translateModeModal" class="modal show">
  <button data-action="select_mode" data-mode="segment">Recognize text, then translate</button>
  <button data-action="select_mode" data-mode="whole">Translate whole image</button>
</div>{{end}}
{{with .Modal}}<div id="imageModal" class="modal show" data-action="close_preview">
  <img id="modalImage" src="/api/images/{{.Index}}" alt="{{.Caption}}">
  <div id="modalCaption">{{.Caption}}</div>
</div>{{end}}
<main class="panes">
{{template "panel" .Original}}
{{template "panel" .Translated}}
</main>
{{if .ExportVisible}}<div id="exportActions">
  <button data-action="export" data-format="txt">Export TXT</button>
  <button data-action="export" data-format="docx">Export Word</button>
  <button data-action="export" data-format="txt" data-bilingual="true">Export bilingual TXT</button>
  <button data-action="export" data-format="docx" data-bilingual="true">Export bilingual Word</button>
</div>{{end}}
<script>
(function () {
  function post(action, body) {
    return fetch('/api/actions/' + action, {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(body || {})
    }).then(function (r) { return r.json(); });
  }
  function keyOf(el) {
    var item = el.closest('[data-key]');
    return item ? item.getAttribute('data-key') : (el.closest('.translatable') || {}).id;
  }
  function mark(k, on) {
    document.querySelectorAll('[data-key="' + k + '"], .document-preview [id="' + k + '"]').forEach(function (el) {
      el.classList.toggle('highlighted', on);
    });
  }
  document.addEventListener('mouseover', function (e) {
    var k = keyOf(e.target); if (!k) return;
    mark(k, true); post('hover', {key: k});
  });
  document.addEventListener('mouseout', function (e) {
    var k = keyOf(e.target); if (!k) return;
    mark(k, false); post('leave');
  });
  document.addEventListener('click', function (e) {
    var a = e.target.closest('[data-action]');
    if (a) {
      var d = a.dataset;
      post(d.action, {
        index: d.index ? parseInt(d.index, 10) : 0,
        mode: d.mode || '',
        format: d.format || '',
        bilingual: d.bilingual === 'true',
        target_lang: document.getElementById('targetLang').value,
        ai_model: document.getElementById('aiModel').value
      });
      return;
    }
    var k = keyOf(e.target);
    if (!k) return;
    post('click', {key: k}).then(function (res) {
      (res.scroll || []).forEach(function (t) {
        var sel = '#' + t.panel + 'Content [data-key="' + t.key + '"], #' + t.panel + 'Content .document-preview [id="' + t.key + '"]';
        var el = document.querySelector(sel);
        if (el) el.scrollIntoView({behavior: t.behavior, block: t.block});
      });
      mark(k, true);
      setTimeout(function () { mark(k, false); }, res.hold_ms || 2000);
    });
  });
  document.addEventListener('keydown', function (e) {
    if (e.key === 'Escape') post('close_preview');
  });
  var resizeTimer;
  window.addEventListener('resize', function () {
    clearTimeout(resizeTimer);
    resizeTimer = setTimeout(function () {
      post('resize', {width: Math.floor(window.innerWidth / 8)});
    }, 50);
  });
  var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === 'refresh') location.reload();
    if (msg.type === 'highlight') {
      document.querySelectorAll('.highlighted').forEach(function (el) { el.classList.remove('highlighted'); });
    }
  };
})();
</script>
</body>
</html>
{{define "panel"}}<section class="panel">
  <h2>{{.Label}}</h2>
  <div id="{{.ID}}Content">
{{- if .Formatted}}
    <div class="document-preview">{{.Markup}}</div>
{{- else if .Blocks}}
{{- range .Blocks}}
    <div class="text-item{{if .Highlighted}} highlighted{{end}}" data-paragraph="{{.Paragraph}}" data-key="{{.Paragraph}}"{{if .MinHeight}} style="{{px .MinHeight}}"{{end}}>
      <div class="text-item-label"><span class="paragraph-number">{{.Paragraph}}</span> <span>{{$.Label}}</span></div>
      <div class="text-content">{{.Text}}</div>
    </div>
{{- end}}
{{- else}}
    <div class="empty-state">Nothing to show yet</div>
{{- end}}
  </div>
</section>{{end}}
`
