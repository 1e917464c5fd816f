// Package templates holds the dashboard page. The page is a single templ
// component; all data arrives afterwards over the JSON API and the datastar
// SSE endpoints, so the markup itself is static.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard returns the single-page dashboard shell.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Sales Analytics Platform</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f0f2f6; color: #1a1a2e; }
header { background: #1a1a2e; color: #fff; padding: 1rem 2rem; }
header h1 { margin: 0; font-size: 1.4rem; }
header p { margin: 0.25rem 0 0; color: #a0a0c0; font-size: 0.9rem; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
section { background: #fff; border-radius: 8px; padding: 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
section h2 { margin-top: 0; font-size: 1.1rem; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
.modern-table th { text-align: left; background: #f0f2f6; padding: 6px 10px; }
.modern-table td { padding: 6px 10px; border-top: 1px solid #eee; }
.dataset-meta { color: #555; font-size: 0.85rem; }
.controls { display: flex; gap: 0.75rem; flex-wrap: wrap; align-items: center; }
button { background: #4361ee; color: #fff; border: 0; border-radius: 6px; padding: 0.5rem 1rem; cursor: pointer; }
button.secondary { background: #6c757d; }
select, input[type=file] { padding: 0.4rem; }
</style>
</head>
<body>
<header>
<h1>📊 Sales Analytics Platform</h1>
<p>Загрузка данных, KPI, визуализации и анализ продаж</p>
</header>
<main data-signals="{kpiData: {}, chartData: {}, correlationData: {}}">

<section id="load-section">
<h2>📁 Загрузка данных</h2>
<div class="controls">
<form id="upload-form" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.xlsx,.xls"/>
<button type="button" data-on-click="@post('/api/upload', {contentType: 'form'})">Загрузить файл</button>
</form>
<select id="demo-select" data-bind-demoLabel>
<option value="">Выберите демо-датасет...</option>
</select>
<button data-on-click="@post('/api/demo-datasets/load')">Загрузить демо</button>
<button class="secondary" data-on-click="@post('/api/reset')">🔄 Сбросить</button>
</div>
</section>

<section id="overview-section">
<h2>📋 Обзор данных</h2>
<button data-on-click="@get('/sse/overview')">Обновить</button>
<a href="/api/download">💾 Скачать данные (CSV)</a>
<div id="overview-content">Датасет не загружен</div>
</section>

<section id="kpi-section">
<h2>📊 Ключевые показатели</h2>
<button data-on-click="@get('/sse/kpis')">Рассчитать KPI</button>
<div id="kpi-content"></div>
</section>

<section id="chart-section">
<h2>📈 Визуализации</h2>
<div class="controls">
<select id="chart-type">
<option value="line">Линейный график</option>
<option value="bar">Столбчатая диаграмма</option>
<option value="pie">Круговая диаграмма</option>
<option value="scatter">Диаграмма рассеяния</option>
<option value="box">Box plot</option>
<option value="histogram">Гистограмма</option>
</select>
<button data-on-click="@get('/sse/chart')">Построить</button>
</div>
<div id="chart-content"></div>
<canvas id="chart-canvas" height="120"></canvas>
</section>

<section id="analysis-section">
<h2>🔍 Анализ данных</h2>
<button data-on-click="@get('/sse/refresh-all')">Корреляции и статистика</button>
<div id="analysis-content"></div>
</section>

</main>
</body>
</html>
`
