// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chtljs

// Runtime helpers emitted once per output when the corresponding
// construct occurs. Plain ES5-compatible JavaScript, no dependencies.

const runtimeVir = `function __chtlVir(name, obj) {
	Object.defineProperty(obj, '__virName', { value: name, enumerable: false });
	Object.defineProperty(obj, '__virKeys', {
		value: function () { return Object.keys(obj); },
		enumerable: false
	});
	return obj;
}`

const runtimeAnimate = `function __chtlAnimate(opts) {
	var target = opts.target;
	var duration = opts.duration || 300;
	var delay = opts.delay || 0;
	var loop = opts.loop || 1;
	var direction = opts.direction || 'normal';
	var frames = [];
	if (opts.begin) frames.push({ at: 0, props: opts.begin });
	(opts.when || []).forEach(function (kf) {
		frames.push({ at: kf.at != null ? kf.at : 0.5, props: kf });
	});
	if (opts.end) frames.push({ at: 1, props: opts.end });
	frames.sort(function (a, b) { return a.at - b.at; });

	function ease(t) {
		switch (opts.easing) {
			case 'ease-in': return t * t;
			case 'ease-out': return t * (2 - t);
			case 'ease-in-out': return t < 0.5 ? 2 * t * t : -1 + (4 - 2 * t) * t;
			default: return t;
		}
	}
	function lerpProps(t) {
		var prev = frames[0], next = frames[frames.length - 1];
		for (var i = 0; i < frames.length; i++) {
			if (frames[i].at <= t) prev = frames[i];
			if (frames[i].at >= t) { next = frames[i]; break; }
		}
		var span = next.at - prev.at || 1;
		var local = (t - prev.at) / span;
		Object.keys(next.props).forEach(function (key) {
			if (key === 'at') return;
			var from = parseFloat(prev.props[key]);
			var to = parseFloat(next.props[key]);
			if (isNaN(from) || isNaN(to)) {
				target.style[key] = next.props[key];
				return;
			}
			var unit = String(next.props[key]).replace(/^-?[\d.]+/, '');
			target.style[key] = (from + (to - from) * local) + unit;
		});
	}

	var iteration = 0;
	var start = null;
	function frame(ts) {
		if (start === null) start = ts;
		var raw = Math.min((ts - start) / duration, 1);
		var t = ease(raw);
		if (direction === 'reverse' || (direction === 'alternate' && iteration % 2 === 1)) {
			t = 1 - t;
		}
		lerpProps(t);
		if (raw < 1) {
			requestAnimationFrame(frame);
			return;
		}
		iteration++;
		if (loop < 0 || iteration < loop) {
			start = null;
			requestAnimationFrame(frame);
			return;
		}
		if (typeof opts.callback === 'function') opts.callback();
	}
	setTimeout(function () { requestAnimationFrame(frame); }, delay);
}`

const runtimeRouter = `function __chtlRouter(opts) {
	var mode = opts.mode || 'hash';
	var routes = opts.routes || {};
	var router = {
		addRoute: function (path, page) { routes[path] = page; return router; },
		navigate: function (path) {
			if (mode === 'hash') {
				window.location.hash = path;
			} else {
				history.pushState(null, '', path);
				router.resolve(path);
			}
			return router;
		},
		resolve: function (path) {
			var page = routes[path] || routes['*'];
			if (typeof page === 'function') page();
			return router;
		}
	};
	if (mode === 'hash') {
		window.addEventListener('hashchange', function () {
			router.resolve(window.location.hash.replace(/^#/, '') || '/');
		});
	} else {
		window.addEventListener('popstate', function () {
			router.resolve(window.location.pathname);
		});
	}
	return router;
}`

const runtimeFileLoader = `function __chtlFileLoader(files) {
	files.forEach(function (file) {
		if (/\.css$/.test(file)) {
			var link = document.createElement('link');
			link.rel = 'stylesheet';
			link.href = file;
			document.head.appendChild(link);
			return;
		}
		var script = document.createElement('script');
		script.src = file;
		document.body.appendChild(script);
	});
}`
