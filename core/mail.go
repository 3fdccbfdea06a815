package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"
)

var (
	templates   tmplCache
	templatesMu sync.RWMutex
)

type (
	tmplCacheEntry struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
	tmplCache map[string]*tmplCacheEntry // {name: entry}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) template() (*tmplCacheEntry, bool) {
	templatesMu.RLock()
	defer templatesMu.RUnlock()
	entry, ok := templates[m.TemplateName]
	return entry, ok
}

// Render fills TextContent and HTMLContent from BodyStr or the named templates.
func (m *EmailMessage) Render(appName, frontendBaseURL string) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	entry, ok := m.template()
	if !ok {
		return fmt.Errorf("email template %q not found", m.TemplateName)
	}
	data := ContextData{AppName: appName, FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}

	var buff bytes.Buffer
	if entry.text != nil && m.BodyStr == "" {
		if err := entry.text.Execute(&buff, data); err != nil {
			return err
		}
		m.TextContent = buff.String()
		buff.Reset()
	}
	if entry.html != nil {
		if err := entry.html.Execute(&buff, data); err != nil {
			return err
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// ParseEmailTemplates parses every `dir/*.txt` and `dir/*.gohtml` template (files starting with `_` are layouts).
func ParseEmailTemplates(fsys fs.FS, dir string, strict bool, logger Logger) {
	cache := make(tmplCache)

	fps, err := fs.Glob(fsys, path.Join(dir, "*"))
	if err != nil {
		logger.Error(fmt.Sprintf("core.ParseEmailTemplates: %v", err), err)
		return
	}

	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := cache[name]
		if !ok {
			entry = new(tmplCacheEntry)
			cache[name] = entry
		}

		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(fsys, path.Join(dir, "_base.txt"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("core.ParseEmailTemplates(%s): %v", fp, err), err)
				continue
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry.text = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFS(fsys, path.Join(dir, "_base.gohtml"), fp)
			if err != nil {
				logger.Error(fmt.Sprintf("core.ParseEmailTemplates(%s): %v", fp, err), err)
				continue
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry.html = tmpl
		}
	}

	templatesMu.Lock()
	templates = cache
	templatesMu.Unlock()
}
