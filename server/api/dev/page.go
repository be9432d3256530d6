// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dev

// devPageHTML 是內嵌的 Dev Panel UI。
//
// UI 行為（contract）：
//   - Trial：由 /dev/meta 動態載入。
//   - Seed/Snap 互斥：
//   - Snap 非空 → Seed 會被清空並 disable。
//   - Seed 非空 → Snap 會被清空並 disable。
//   - Snap takes precedence（後端也會以 Snap 為準）。
//   - Rounds：
//   - Draws：前端會 cap 在 5,000 以避免回傳 payload 過大。
//   - Sim  ：前端會 cap 在 3,000,000 以避免長時間阻塞（仍屬 dev tooling）。
//
// 回傳呈現：
//   - Draws：Summary 區顯示快照（start/after），Draw Values 展開後逐筆列出。
//   - Sim  ：僅顯示統計（statistic），不顯示逐筆 values。
const devPageHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>Randlab Dev</title>
  <style>
    body { font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif; background:#0f172a; color:#e2e8f0; margin:0; }
    .wrap { max-width: 980px; margin: 24px auto; padding: 16px 20px; background:#111827; border:1px solid #1f2937; border-radius:12px; box-shadow:0 12px 50px rgba(0,0,0,0.35); }
    h1 { margin: 0 0 16px; font-size: 22px; letter-spacing: 0.3px; }
    .grid { display:grid; grid-template-columns: repeat(auto-fit, minmax(180px,1fr)); gap:12px; margin-bottom:12px; }
    label { display:flex; flex-direction:column; gap:6px; font-size: 13px; color:#cbd5e1; }
    input, select { background:#0b1224; color:#e2e8f0; border:1px solid #1f2738; border-radius:8px; padding:10px 12px; font-size:14px; }
    input:focus, select:focus { outline:1px solid #38bdf8; border-color:#38bdf8; }
    .actions { position:relative; display:flex; gap:10px; align-items:center; justify-content:flex-end; margin: 8px 0 14px; }
    button { cursor:pointer; border:none; border-radius:10px; padding:10px 14px; font-weight:600; letter-spacing:0.2px; }
    #btn-draws { background:#38bdf8; color:#0b1224; }
    #btn-sim { background:#22c55e; color:#0b1224; }
    #btn-clear { background:#1f2937; color:#e2e8f0; border:1px solid #334155; }
    button:disabled { opacity:0.6; cursor:not-allowed; }
    input:disabled, select:disabled { opacity: 0.55; cursor: not-allowed; filter: grayscale(0.25); }
    label.is-disabled { opacity: 0.55; }
    label.is-disabled input, label.is-disabled select { pointer-events: none; }
    .hint { font-size: 12px; color:#94a3b8; margin-top:4px; }
    .info { position:absolute; left:50%; transform:translateX(-50%); font-size:13px; color:#94a3b8; }
    .info.warn { color:#f87171; font-weight:600; }
    #summary { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; min-height:120px; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; margin-bottom:12px; }
    #valueBox { border:1px solid #1f2737; border-radius:12px; padding:10px; background:#0b1224; margin-bottom:12px; max-height: calc(60vh - 56px); overflow:auto; }
    #valueList { max-height: calc(60vh - 136px); overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; }
    .val-item { display:grid; grid-template-columns: minmax(3.5em, max-content) max-content; align-items:center; column-gap:12px; padding:4px 10px; border-left: 4px solid transparent; }
    .val-item:hover { background:#1f2937; border-left-color:#38bdf8; }
    .val-index { color:#94a3b8; text-align:right; justify-self:end; min-width:3.5em; font-variant-numeric: tabular-nums; }
    .note { font-size:12px; color:#94a3b8; margin-top:4px; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Randlab Dev Panel</h1>
    <div class="grid">
      <label>Trial
        <select id="trial"></select>
      </label>
      <label>Seed (uint64)
        <input id="seed" type="text" inputmode="numeric" placeholder="Empty = auto" />
      </label>
      <label>Snap (base64url)
        <input id="snap" type="text" placeholder="Paste snap (base64url)" />
      </label>
      <label>Rounds
        <input id="rounds" type="number" min="1" max="3000000" value="10" />
      </label>
    </div>
    <div class="actions">
      <button id="btn-draws">Draws</button>
      <button id="btn-sim">Sim</button>
      <button id="btn-clear">Clear</button>
      <span class="info" id="info"></span>
    </div>

    <pre id="summary"></pre>

    <details id="valueBox" style="display:none;">
      <summary>Draw Values</summary>
      <div id="valueList"></div>
    </details>
  </div>
<script>
const state = { meta: null };
const trialSel = document.getElementById('trial');
const seedInput = document.getElementById('seed');
const snapInput = document.getElementById('snap');
const roundsInput = document.getElementById('rounds');
const summary = document.getElementById('summary');
const valueBox = document.getElementById('valueBox');
const valueList = document.getElementById('valueList');
const info = document.getElementById('info');

function setInfo(msg, warn) {
  info.textContent = msg || '';
  info.className = warn ? 'info warn' : 'info';
}

// Seed/Snap 互斥：任一非空就 disable 另一個。
function syncSeedSnap() {
  const hasSnap = snapInput.value.trim() !== '';
  const hasSeed = seedInput.value.trim() !== '';
  seedInput.disabled = hasSnap;
  snapInput.disabled = hasSeed;
  seedInput.closest('label').classList.toggle('is-disabled', hasSnap);
  snapInput.closest('label').classList.toggle('is-disabled', hasSeed);
}
seedInput.addEventListener('input', syncSeedSnap);
snapInput.addEventListener('input', syncSeedSnap);

async function loadMeta() {
  const res = await fetch('/dev/meta');
  if (!res.ok) { setInfo('load /dev/meta failed', true); return; }
  state.meta = await res.json();
  trialSel.innerHTML = '';
  for (const t of state.meta) {
    const opt = document.createElement('option');
    opt.value = t.tid;
    opt.textContent = t.tid + ' · ' + t.name + ' (' + t.mode + ')';
    trialSel.appendChild(opt);
  }
  onTrialChange();
}

function onTrialChange() {
  if (!state.meta) return;
  const t = state.meta.find(x => String(x.tid) === String(trialSel.value));
  if (t && t.rounds > 0) roundsInput.value = t.rounds;
}
trialSel.addEventListener('change', onTrialChange);

function payload(cap) {
  let rounds = parseInt(roundsInput.value, 10) || 0;
  if (rounds > cap) { rounds = cap; roundsInput.value = cap; }
  return {
    tid: parseInt(trialSel.value, 10) || 0,
    rounds: rounds,
    seed: seedInput.value.trim(),
    snap: snapInput.value.trim(),
  };
}

async function post(path, body) {
  setInfo('running...');
  const res = await fetch(path, { method: 'POST', headers: {'Content-Type':'application/json'}, body: JSON.stringify(body) });
  const data = await res.json().catch(() => null);
  if (!res.ok) {
    setInfo((data && data.message) || ('HTTP ' + res.status), true);
    return null;
  }
  setInfo('');
  return data;
}

document.getElementById('btn-draws').addEventListener('click', async () => {
  const data = await post('/dev/draws', payload(5000));
  if (!data) return;
  // after 快照貼回 snap 欄位可續抽下一段
  summary.textContent = 'mode : ' + data.mode + '\nround: ' + data.round +
    '\nstart: ' + data.start_b64u + '\nafter: ' + data.after_b64u;
  const vals = data.u64 || data.floats || data.ints || [];
  valueList.innerHTML = '';
  vals.forEach((v, i) => {
    const div = document.createElement('div');
    div.className = 'val-item';
    div.innerHTML = '<span class="val-index">' + (i + 1) + '</span><span>' + v + '</span>';
    valueList.appendChild(div);
  });
  valueBox.style.display = '';
});

document.getElementById('btn-sim').addEventListener('click', async () => {
  const data = await post('/dev/sim', payload(3000000));
  if (!data) return;
  valueBox.style.display = 'none';
  summary.textContent = 'start: ' + data.before + '\nafter: ' + data.after +
    '\n\n' + JSON.stringify(data.statistic, null, 2);
});

document.getElementById('btn-clear').addEventListener('click', () => {
  seedInput.value = ''; snapInput.value = '';
  summary.textContent = ''; valueList.innerHTML = '';
  valueBox.style.display = 'none';
  setInfo('');
  syncSeedSnap();
});

loadMeta();
</script>
</body>
</html>`
