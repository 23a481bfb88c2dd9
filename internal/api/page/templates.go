package page

import "html/template"

// Templates holds every rendered page; modules.go installs it on the engine.
var Templates = template.Must(template.New("signin").Parse(signInTmpl))

func init() {
	template.Must(Templates.New("home").Parse(homeTmpl))
}

const signInTmpl = `<!doctype html>
<html><head><meta charset="utf-8"><title>STR Portal - Sign in</title></head>
<body>
<p id="notice" hidden></p>
<form id="signin">
  <input name="userid" autocomplete="username" placeholder="User ID">
  <input name="password" type="password" autocomplete="current-password" placeholder="Password">
  <button type="submit">Sign in</button>
  <p id="error" style="color:red"></p>
</form>
<script>
(function () {
  var base = {{.BasePath}};
  var form = document.getElementById("signin");
  if (sessionStorage.getItem("justLoggedOut")) {
    sessionStorage.removeItem("justLoggedOut");
    form.reset();
  }
  if (sessionStorage.getItem("sessionInvalidated")) {
    sessionStorage.removeItem("sessionInvalidated");
    var n = document.getElementById("notice");
    n.textContent = "Your session was terminated. Please sign in again.";
    n.hidden = false;
  }
  form.addEventListener("submit", function (e) {
    e.preventDefault();
    fetch(base + "/api/auth/login", {
      method: "POST", credentials: "include",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({userid: form.userid.value, password: form.password.value})
    }).then(function (r) { return r.json(); }).then(function (body) {
      if (!body.success) {
        document.getElementById("error").textContent = body.message + (body.detail ? ": " + body.detail : "");
        return;
      }
      localStorage.setItem("userMenu", JSON.stringify(body.userMenu || []));
      window.location.replace(base + body.redirect);
    });
  });
})();
</script>
</body></html>`

const homeTmpl = `<!doctype html>
<html><head><meta charset="utf-8"><title>STR Portal</title></head>
<body>
<header>{{.User.UserName}} &middot; {{.User.BranchCode}} {{.User.BranchName}} &middot; {{.ProfileLabel}}</header>
<p id="notice" hidden>Your session expired due to inactivity.</p>
<button id="signout">Sign out</button>
<script>
(function () {
  var base = {{.BasePath}};
  var idleSeconds = {{.IdleSeconds}};
  var intervalSeconds = {{.IntervalSeconds}};
  var graceSeconds = {{.GraceSeconds}};
  var mode = {{.ValidatorMode}};

  function leave(flag) {
    localStorage.removeItem("userMenu");
    sessionStorage.clear();
    sessionStorage.setItem(flag, "1");
    window.location.replace(base + "/signin");
  }

  // idle -> validating -> redirecting
  var state = "idle";
  function forceLogout() {
    if (state === "redirecting") return;
    state = "redirecting";
    leave("sessionInvalidated");
  }
  function check() {
    if (state !== "idle") return;
    state = "validating";
    var ctl = new AbortController();
    var deadline = setTimeout(function () { ctl.abort(); }, 8000);
    fetch(base + "/api/auth/validate", {credentials: "include", signal: ctl.signal})
      .then(function (r) {
        if (r.status === 401) return {valid: false};
        if (!r.ok) return null;
        return r.json();
      })
      .then(function (body) {
        if (body && body.valid === false) forceLogout();
      })
      .catch(function (e) { console.warn("session validation failed", e); })
      .finally(function () {
        clearTimeout(deadline);
        if (state === "validating") state = "idle";
      });
  }
  if (mode === "both") console.warn("session validator runs in both interval and navigation mode");
  if (mode !== "navigation") {
    setTimeout(function () { check(); setInterval(check, intervalSeconds * 1000); }, graceSeconds * 1000);
  }
  if (mode === "navigation" || mode === "both") {
    window.addEventListener("popstate", check);
    window.addEventListener("hashchange", check);
  }

  var idleTimer = null, expired = false;
  function expire() {
    expired = true;
    document.getElementById("notice").hidden = false;
    setTimeout(function () {
      fetch(base + "/api/auth/logout", {
        method: "POST", credentials: "include",
        headers: {"Content-Type": "application/json"},
        body: JSON.stringify({reason: "idle"})
      }).finally(function () { leave("justLoggedOut"); });
    }, 3000);
  }
  function arm() {
    if (expired) return;
    clearTimeout(idleTimer);
    idleTimer = setTimeout(expire, idleSeconds * 1000);
  }
  ["mousemove", "keydown", "click", "scroll", "touchstart"].forEach(function (ev) {
    window.addEventListener(ev, arm, {passive: true});
  });
  arm();

  document.getElementById("signout").addEventListener("click", function () {
    fetch(base + "/api/auth/logout", {method: "POST", credentials: "include"}).then(function () {
      clearTimeout(idleTimer);
      leave("justLoggedOut");
    });
  });
})();
</script>
</body></html>`
