package ui

const templates = `
{{define "index"}}
<!doctype html>
<html lang="es">
<head>
  <meta charset="utf-8"/>
  <title>Gestión de Solicitudes</title>
  <style>
    body { font-family: sans-serif; margin: 24px; max-width: 900px; }
    .tabs a { margin-right: 12px; }
    .tabs a.active { font-weight: bold; }
    .card { border: 1px solid #ddd; border-radius: 6px; padding: 12px; margin-top: 12px; }
    .status-pendiente { border-left: 4px solid #e0a800; }
    .status-aprobado { border-left: 4px solid #28a745; }
    .status-rechazado { border-left: 4px solid #dc3545; }
    .badge { background: #dc3545; color: #fff; border-radius: 10px; padding: 0 8px; }
    .err { color: #b00020; }
    .ok { color: #1b5e20; }
    .comment { margin-left: 12px; color: #444; }
    label { display: block; margin-top: 8px; }
  </style>
</head>
<body>
  <h2>Gestión de Solicitudes</h2>

  <form method="get" action="/ui">
    <input type="hidden" name="tab" value="{{.Tab}}"/>
    <input name="usuario" placeholder="Tu usuario" value="{{.Usuario}}"/>
    <button type="submit">Ver</button>
  </form>

  <div class="tabs">
    <a href="/ui?tab=crear&usuario={{.Usuario}}"{{if eq .Tab "crear"}} class="active"{{end}}>Crear Solicitud</a>
    <a href="/ui?tab=bandeja&usuario={{.Usuario}}"{{if eq .Tab "bandeja"}} class="active"{{end}}>Mi Bandeja
      {{if .Board.PendientesParaMi}}<span class="badge">{{.Board.PendientesParaMi}}</span>{{end}}</a>
  </div>

  {{if .Alert}}<p class="err" role="alert">{{.Alert}}</p>{{end}}
  {{if .Notice}}<p class="ok">{{.Notice}}</p>{{end}}

  {{if eq .Tab "crear"}}
    <form method="post" action="/ui/solicitudes">
      <input type="hidden" name="usuario" value="{{.Usuario}}"/>
      <label>Título <input name="titulo" value="{{.Form.Titulo}}"/></label>
      {{with index .Fields "titulo"}}<span class="err">{{.}}</span>{{end}}
      <label>NIT Cliente <input name="nit" value="{{.Form.Nit}}"/></label>
      {{if .NitError}}<span class="err">{{.NitError}}</span>{{end}}
      <label>Tipo de Solicitud <input name="tipo" value="{{.Form.Tipo}}"/></label>
      {{with index .Fields "tipo"}}<span class="err">{{.}}</span>{{end}}
      <label>Descripción <textarea name="descripcion">{{.Form.Descripcion}}</textarea></label>
      {{with index .Fields "descripcion"}}<span class="err">{{.}}</span>{{end}}
      <label>Solicitante <input name="solicitante" value="{{.Form.Solicitante}}"/></label>
      {{with index .Fields "solicitante"}}<span class="err">{{.}}</span>{{end}}
      <label>Responsable <input name="responsable" value="{{.Form.Responsable}}"/></label>
      {{with index .Fields "responsable"}}<span class="err">{{.}}</span>{{end}}
      <p><button type="submit">Enviar Solicitud</button></p>
    </form>
  {{else}}
    {{if not .Usuario}}
      <p>Ingresa tu usuario para ver tus solicitudes.</p>
    {{else if not .Board.Cards}}
      <p>No hay solicitudes en el historial para el usuario <b>{{.Usuario}}</b>.</p>
    {{end}}
    {{range .Board.Cards}}
      <div class="card status-{{.Estado}}">
        <h3>{{.Titulo}}</h3>
        <p><strong>Estado:</strong> {{.Estado}}</p>
        <p><strong>Solicitante:</strong> {{.Solicitante}}</p>
        <p><strong>Responsable:</strong> {{.Responsable}}</p>
        <p><strong>Fecha de Creación:</strong> {{fecha .Fecha}}</p>
        <p><strong>Tipo de Solicitud:</strong> {{.Tipo}}</p>
        <p><strong>NIT Cliente:</strong> {{.Nit}}</p>
        <p><strong>Descripción:</strong> {{if .Descripcion}}{{.Descripcion}}{{else}}N/A{{end}}</p>
        {{if .Comentarios}}
          <div><strong>Historial de Aprobación:</strong>
          {{range .Comentarios}}<div class="comment">{{fecha .Fecha}} - <b>{{.Autor}}</b>: {{.Texto}}</div>{{end}}
          </div>
        {{end}}
        {{if .CanDecide}}
          <form method="post" action="/ui/solicitudes/{{.ID}}/decision">
            <h4>Acciones Pendientes</h4>
            <input type="hidden" name="usuario" value="{{$.Usuario}}"/>
            <input name="comentario" placeholder="Añadir Comentario (opcional)..."/>
            <button type="submit" name="estado" value="aprobado">Aprobar</button>
            <button type="submit" name="estado" value="rechazado">Rechazar</button>
          </form>
        {{end}}
      </div>
    {{end}}
  {{end}}
</body>
</html>
{{end}}
`
