package templates

// chartScript draws the six canvases from the chart signals patched by
// /sse/dashboard. The page calls dashboardCharts.render from a data-effect,
// so every signal patch redraws. Existing charts are destroyed first since
// Chart.js refuses to reuse a canvas.
const chartScript = `<script>
window.dashboardCharts = (function () {
  var months = ["Jan","Feb","Mar","Apr","May","Jun","Jul","Aug","Sep","Oct","Nov","Dec"];
  var charts = {};

  function draw(id, config) {
    var el = document.getElementById(id);
    if (!el || typeof Chart === "undefined") return;
    if (charts[id]) charts[id].destroy();
    charts[id] = new Chart(el, config);
  }

  function titled(text, extra) {
    var opts = {responsive: true, plugins: {title: {display: true, text: text}}};
    for (var k in extra || {}) opts[k] = extra[k];
    return opts;
  }

  function byYear(points, field) {
    var years = {};
    (points || []).forEach(function (p) {
      if (!years[p.year]) years[p.year] = months.map(function () { return 0; });
      years[p.year][p.month - 1] = p[field];
    });
    return Object.keys(years).sort().map(function (y) {
      return {label: y, data: years[y]};
    });
  }

  function series(items, key, label) {
    items = items || [];
    return {
      labels: items.map(function (d) { return d[key]; }),
      datasets: [{label: label, data: items.map(function (d) { return d.value; })}]
    };
  }

  return {
    render: function (s) {
      draw("monthly-sales-chart", {
        type: "line",
        data: {labels: months, datasets: byYear(s.monthly, "sale_price")},
        options: titled("Monthly Sales by Year")
      });
      draw("monthly-profit-chart", {
        type: "bar",
        data: {labels: months, datasets: byYear(s.monthly, "profit")},
        options: titled("Monthly Profit by Year")
      });
      draw("segment-chart", {
        type: "bar",
        data: series(s.segments, "key", s.label),
        options: titled(s.label + " by Segment - " + s.year)
      });
      draw("category-chart", {
        type: "doughnut",
        data: series(s.categories, "key", s.label),
        options: titled(s.label + " by Category - " + s.year, {cutout: "40%"})
      });
      draw("top-products-chart", {
        type: "bar",
        data: series(s.top, "entity", s.label),
        options: titled("Top " + s.n + " Products by " + s.label + " - " + s.year, {indexAxis: "y"})
      });
      draw("bottom-products-chart", {
        type: "bar",
        data: series(s.bottom, "entity", s.label),
        options: titled("Bottom " + s.n + " Products by " + s.label + " - " + s.year, {indexAxis: "y"})
      });
    }
  };
})();
</script>
`

// chartEffect feeds the chart signals to chartScript.
const chartEffect = `dashboardCharts.render({monthly: $monthlyData, segments: $segmentData, ` +
	`categories: $categoryData, top: $topData, bottom: $bottomData, ` +
	`label: $metricLabel, year: $chartYear, n: $n})`
