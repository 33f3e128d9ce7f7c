package browser

import (
	"github.com/slashdevops/fingerprint"
)

// capabilityChecks holds the presence expression evaluated in the page for
// each capability. Capabilities missing from the map are reported absent.
var capabilityChecks = map[fingerprint.Capability]string{
	fingerprint.CapBluetooth:                 `'bluetooth' in navigator`,
	fingerprint.CapUSB:                       `'usb' in navigator`,
	fingerprint.CapSerial:                    `'serial' in navigator`,
	fingerprint.CapNFC:                       `'nfc' in navigator`,
	fingerprint.CapHID:                       `'hid' in navigator`,
	fingerprint.CapGamepads:                  `'getGamepads' in navigator`,
	fingerprint.CapXR:                        `'xr' in navigator`,
	fingerprint.CapWebSocket:                 `'WebSocket' in window`,
	fingerprint.CapWebWorkers:                `typeof Worker !== 'undefined'`,
	fingerprint.CapWebAssembly:               `typeof WebAssembly === 'object'`,
	fingerprint.CapSharedWorkers:             `typeof SharedWorker !== 'undefined'`,
	fingerprint.CapServiceWorkers:            `'serviceWorker' in navigator`,
	fingerprint.CapWebRTC:                    `'RTCPeerConnection' in window`,
	fingerprint.CapWebAuthn:                  `'PublicKeyCredential' in window`,
	fingerprint.CapSpeechSynthesis:           `'speechSynthesis' in window`,
	fingerprint.CapSpeechRecognition:         `'SpeechRecognition' in window || 'webkitSpeechRecognition' in window`,
	fingerprint.CapClipboardReadText:         `!!(navigator.clipboard && navigator.clipboard.readText)`,
	fingerprint.CapClipboardWriteText:        `!!(navigator.clipboard && navigator.clipboard.writeText)`,
	fingerprint.CapClipboardRead:             `!!(navigator.clipboard && navigator.clipboard.read)`,
	fingerprint.CapClipboardWrite:            `!!(navigator.clipboard && navigator.clipboard.write)`,
	fingerprint.CapIndexedDB:                 `'indexedDB' in window`,
	fingerprint.CapWebSQL:                    `'openDatabase' in window`,
	fingerprint.CapDOMStorage:                `'localStorage' in window && 'sessionStorage' in window`,
	fingerprint.CapMathML:                    `typeof MathMLElement !== 'undefined'`,
	fingerprint.CapTouchEvents:               `'ontouchstart' in window`,
	fingerprint.CapColorGamutP3:              `matchMedia('(color-gamut: p3)').matches`,
	fingerprint.CapWebGPU:                    `'gpu' in navigator`,
	fingerprint.CapWebTransport:              `'WebTransport' in window`,
	fingerprint.CapWebCodecs:                 `'VideoEncoder' in window`,
	fingerprint.CapWebMIDI:                   `'requestMIDIAccess' in navigator`,
	fingerprint.CapWebNFC:                    `'NDEFReader' in window`,
	fingerprint.CapOffscreenCanvas:           `'OffscreenCanvas' in window`,
	fingerprint.CapWebAnimation:              `'animate' in document.createElement('div')`,
	fingerprint.CapWebShare:                  `'share' in navigator`,
	fingerprint.CapPayments:                  `'PaymentRequest' in window`,
	fingerprint.CapCredentialManagement:      `'credentials' in navigator`,
	fingerprint.CapWebVR:                     `'getVRDisplays' in navigator`,
	fingerprint.CapSharedArrayBuffer:         `typeof SharedArrayBuffer !== 'undefined'`,
	fingerprint.CapBackgroundSync:            `'SyncManager' in window`,
	fingerprint.CapPeriodicSync:              `'PeriodicSyncManager' in window`,
	fingerprint.CapWebLocks:                  `'locks' in navigator`,
	fingerprint.CapIdleDetection:             `'IdleDetector' in window`,
	fingerprint.CapContentIndex:              `'ContentIndex' in window`,
	fingerprint.CapLayoutInstability:         `'LayoutShift' in window`,
	fingerprint.CapEyeDropper:                `'EyeDropper' in window`,
	fingerprint.CapFileSystemAccess:          `'showOpenFilePicker' in window`,
	fingerprint.CapLocalStorage:              `'localStorage' in window`,
	fingerprint.CapSessionStorage:            `'sessionStorage' in window`,
	fingerprint.CapCacheAPI:                  `'caches' in window`,
	fingerprint.CapRTCPeerConnection:         `'RTCPeerConnection' in window`,
	fingerprint.CapRTCDataChannel:            `'RTCDataChannel' in window`,
	fingerprint.CapRTCSessionDescription:     `'RTCSessionDescription' in window`,
	fingerprint.CapDeviceMotion:              `'DeviceMotionEvent' in window`,
	fingerprint.CapDeviceOrientation:         `'DeviceOrientationEvent' in window`,
	fingerprint.CapAbsoluteOrientation:       `'AbsoluteOrientationSensor' in window`,
	fingerprint.CapAccelerometer:             `'Accelerometer' in window`,
	fingerprint.CapGyroscope:                 `'Gyroscope' in window`,
	fingerprint.CapMagnetometer:              `'Magnetometer' in window`,
	fingerprint.CapAmbientLightSensor:        `'AmbientLightSensor' in window`,
	fingerprint.CapGeolocation:               `'geolocation' in navigator`,
	fingerprint.CapProximitySensor:           `'ProximitySensor' in window`,
	fingerprint.CapMediaDevices:              `!!(navigator.mediaDevices && navigator.mediaDevices.enumerateDevices)`,
	fingerprint.CapMediaCapabilities:         `'mediaCapabilities' in navigator`,
	fingerprint.CapPermissions:               `!!(navigator.permissions && navigator.permissions.query)`,
	fingerprint.CapNavigatorBuildID:          `'buildID' in navigator`,
	fingerprint.CapNavigatorCredentials:      `'credentials' in navigator`,
	fingerprint.CapNavigatorKeyboard:         `'keyboard' in navigator`,
	fingerprint.CapNavigatorActiveVRDisplays: `'activeVRDisplays' in navigator`,
	fingerprint.CapNavigatorStandalone:       `'standalone' in navigator`,
	fingerprint.CapNavigatorWakeLock:         `'wakeLock' in navigator`,
	fingerprint.CapNavigatorVirtualKeyboard:  `'virtualKeyboard' in navigator`,
	fingerprint.CapNavigatorCanShare:         `'canShare' in navigator`,
	fingerprint.CapWebDriver:                 `navigator.webdriver === true`,
	fingerprint.CapSelenium:                  `!!(window._selenium || window.callSelenium || document.__selenium_unwrapped)`,
	fingerprint.CapDocumentAutomation:        `!!document.documentElement.getAttribute('webdriver')`,
	fingerprint.CapDOMAutomation:             `!!(window.domAutomation || window.domAutomationController)`,
	fingerprint.CapSequentumExternal:         `!!(window.external && String(window.external).indexOf('Sequentum') !== -1)`,
	fingerprint.CapPhantom:                   `!!(window.callPhantom || window._phantom)`,
	fingerprint.CapNightmare:                 `!!window.__nightmare`,
	fingerprint.CapChromeObject:              `!!window.chrome`,
	fingerprint.CapChromeWebstore:            `!!(window.chrome && window.chrome.webstore && window.chrome.webstore.install)`,
}

// capabilityScript builds one function that evaluates every check and
// returns an object keyed by capability name. A throwing check counts as
// absent.
func capabilityScript() string {
	js := "() => {\n\tconst out = {};\n\tconst check = (name, fn) => { try { out[name] = !!fn(); } catch (e) { out[name] = false; } };\n"
	for _, c := range fingerprint.Capabilities() {
		expr, ok := capabilityChecks[c]
		if !ok {
			continue
		}
		js += "\tcheck(" + quote(c.String()) + ", () => " + expr + ");\n"
	}

	return js + "\treturn out;\n}"
}

func quote(s string) string {
	return "'" + s + "'"
}

const navigatorJS = `() => {
	const n = navigator;
	const props = {};
	for (const k in n) {
		try {
			const v = n[k];
			const t = typeof v;
			if (t === 'string' || t === 'number' || t === 'boolean') props[k] = v;
		} catch (e) {}
	}
	const mime = m => ({
		type: m.type, description: m.description, suffixes: m.suffixes,
		enabledPlugin: m.enabledPlugin ? m.enabledPlugin.name : '',
	});
	const plugins = Array.from(n.plugins || []).map(p => ({
		name: p.name, description: p.description, filename: p.filename, version: p.version || '',
		mimeTypes: Array.from(p).map(mime),
	}));
	const uad = n.userAgentData;
	return {
		userAgent: n.userAgent || '',
		platform: n.platform || '',
		cpuClass: n.cpuClass || '',
		doNotTrack: n.doNotTrack || '',
		language: n.language || '',
		languages: Array.from(n.languages || []),
		oscpu: n.oscpu || '',
		vendor: n.vendor || '',
		vendorSub: n.vendorSub || '',
		productSub: n.productSub || '',
		appName: n.appName || '',
		appVersion: n.appVersion || '',
		appCodeName: n.appCodeName || '',
		buildID: n.buildID || '',
		product: n.product || '',
		cookieEnabled: !!n.cookieEnabled,
		javaEnabled: typeof n.javaEnabled === 'function' ? n.javaEnabled() : false,
		pdfViewerEnabled: 'pdfViewerEnabled' in n ? !!n.pdfViewerEnabled : null,
		userAgentData: uad ? {
			brands: Array.from(uad.brands || []).map(b => ({brand: b.brand, version: b.version})),
			mobile: !!uad.mobile,
			highEntropy: typeof uad.getHighEntropyValues === 'function',
		} : null,
		plugins: plugins,
		mimeTypes: Array.from(n.mimeTypes || []).map(mime),
		props: props,
		userActivation: n.userActivation ? {
			hasBeenActive: n.userActivation.hasBeenActive,
			isActive: n.userActivation.isActive,
		} : null,
	};
}`

const highEntropyJS = `async (hints) => {
	if (!navigator.userAgentData || !navigator.userAgentData.getHighEntropyValues) return null;
	return await navigator.userAgentData.getHighEntropyValues(hints);
}`

const screenJS = `() => {
	const s = screen;
	const o = s.orientation;
	return {
		width: s.width, height: s.height,
		availWidth: s.availWidth, availHeight: s.availHeight,
		colorDepth: s.colorDepth, pixelDepth: s.pixelDepth,
		devicePixelRatio: window.devicePixelRatio,
		orientation: o ? {type: o.type, angle: o.angle} : null,
		innerWidth: window.innerWidth, innerHeight: window.innerHeight,
		outerWidth: window.outerWidth, outerHeight: window.outerHeight,
	};
}`

const matchMediaJS = `(q) => window.matchMedia ? matchMedia(q).matches : null`

const hardwareJS = `() => ({
	deviceMemory: navigator.deviceMemory || 0,
	hardwareConcurrency: navigator.hardwareConcurrency || 0,
	maxTouchPoints: navigator.maxTouchPoints || 0,
})`

const clockJS = `() => Date.now()`

const zoneJS = `() => {
	const o = Intl.DateTimeFormat().resolvedOptions();
	return {timeZone: o.timeZone || '', locale: o.locale || '', offset: new Date().getTimezoneOffset()};
}`

const performanceJS = `() => {
	const t = performance.timing;
	return {
		navigationStart: t ? t.navigationStart : 0,
		timeOrigin: performance.timeOrigin || 0,
		now: performance.now(),
	};
}`

// renderScenes draw one deterministic scene each and return the data URL.
// A null result means the page cannot draw that scene.
var renderScenes = map[fingerprint.RenderKind]string{
	fingerprint.RenderStandard: `() => {
	const c = document.createElement('canvas');
	c.width = 200; c.height = 50;
	const ctx = c.getContext('2d');
	if (!ctx) return null;
	const g = ctx.createLinearGradient(0, 0, c.width, 0);
	g.addColorStop(0, 'red');
	g.addColorStop(0.5, 'green');
	g.addColorStop(1, 'blue');
	ctx.fillStyle = g;
	ctx.fillRect(0, 0, c.width, c.height);
	ctx.fillStyle = 'white';
	ctx.font = '20px Arial';
	ctx.fillText('Canvas Fingerprint', 10, 30);
	ctx.beginPath();
	ctx.arc(180, 25, 20, 0, Math.PI * 2);
	ctx.strokeStyle = 'rgba(255, 255, 0, 0.5)';
	ctx.lineWidth = 2;
	ctx.stroke();
	return c.toDataURL();
}`,
	fingerprint.RenderText: `() => {
	const c = document.createElement('canvas');
	c.width = 650; c.height = 100;
	const ctx = c.getContext('2d');
	if (!ctx) return null;
	const text = 'Cwm fjordbank glyphs vext quiz, 😃 ñ ü é';
	const fonts = ['Arial', 'Times New Roman', 'Courier New', 'Georgia', 'Verdana', 'Helvetica',
		'Tahoma', 'Trebuchet MS', 'Impact', 'Comic Sans MS', 'Palatino', 'Garamond'];
	ctx.textBaseline = 'top';
	fonts.forEach((f, i) => {
		ctx.font = '14px ' + f;
		ctx.fillStyle = 'rgb(' + (i * 20) + ', 50, 100)';
		ctx.fillText(text, 5, 5 + i * 20);
	});
	return c.toDataURL();
}`,
	fingerprint.RenderWebGL: `() => {
	const c = document.createElement('canvas');
	c.width = 100; c.height = 100;
	const gl = c.getContext('webgl') || c.getContext('experimental-webgl');
	if (!gl) return null;
	const compile = (type, src) => {
		const s = gl.createShader(type);
		gl.shaderSource(s, src);
		gl.compileShader(s);
		return s;
	};
	const program = gl.createProgram();
	gl.attachShader(program, compile(gl.VERTEX_SHADER,
		'attribute vec2 p; void main() { gl_Position = vec4(p, 0.0, 1.0); }'));
	gl.attachShader(program, compile(gl.FRAGMENT_SHADER,
		'precision mediump float; void main() { gl_FragColor = vec4(1.0, 0.0, 0.0, 1.0); }'));
	gl.linkProgram(program);
	gl.useProgram(program);
	const buf = gl.createBuffer();
	gl.bindBuffer(gl.ARRAY_BUFFER, buf);
	gl.bufferData(gl.ARRAY_BUFFER, new Float32Array([-0.5, -0.5, 0.5, -0.5, 0.0, 0.5]), gl.STATIC_DRAW);
	const loc = gl.getAttribLocation(program, 'p');
	gl.enableVertexAttribArray(loc);
	gl.vertexAttribPointer(loc, 2, gl.FLOAT, false, 0, 0);
	gl.clearColor(0, 0, 0, 1);
	gl.clear(gl.COLOR_BUFFER_BIT);
	gl.drawArrays(gl.TRIANGLES, 0, 3);
	return c.toDataURL();
}`,
	fingerprint.RenderUniqueValues: `() => {
	const c = document.createElement('canvas');
	c.width = 10; c.height = 10;
	const ctx = c.getContext('2d');
	if (!ctx) return null;
	for (let x = 0; x < 10; x++) {
		for (let y = 0; y < 10; y++) {
			ctx.fillStyle = 'rgba(' + (x * 25) + ', ' + (y * 25) + ', ' + ((x + y) * 12) + ', 0.1)';
			ctx.fillRect(x, y, 1, 1);
		}
	}
	return Array.from(ctx.getImageData(0, 0, 10, 10).data).join(',');
}`,
}

const gpuJS = `() => {
	const c = document.createElement('canvas');
	let gl = c.getContext('webgl2');
	const webGL2 = !!gl;
	if (!gl) gl = c.getContext('webgl') || c.getContext('experimental-webgl');
	if (!gl) return null;
	const dbg = gl.getExtension('WEBGL_debug_renderer_info');
	const aniso = gl.getExtension('EXT_texture_filter_anisotropic') ||
		gl.getExtension('WEBKIT_EXT_texture_filter_anisotropic');
	const precision = {};
	for (const shader of ['VERTEX', 'FRAGMENT']) {
		precision[shader] = {};
		for (const kind of ['FLOAT', 'INT']) {
			precision[shader][kind] = {};
			for (const p of ['HIGH', 'MEDIUM', 'LOW']) {
				const f = gl.getShaderPrecisionFormat(gl[shader + '_SHADER'], gl[p + '_' + kind]);
				precision[shader][kind][p] = f ? {rangeMin: f.rangeMin, rangeMax: f.rangeMax, precision: f.precision} : {};
			}
		}
	}
	const arr = v => v ? Array.from(v) : [0, 0];
	return {
		webGL2: webGL2,
		vendor: dbg ? gl.getParameter(dbg.UNMASKED_VENDOR_WEBGL) : '',
		renderer: dbg ? gl.getParameter(dbg.UNMASKED_RENDERER_WEBGL) : '',
		vendorGL: gl.getParameter(gl.VENDOR),
		rendererGL: gl.getParameter(gl.RENDERER),
		version: gl.getParameter(gl.VERSION),
		shadingLanguageVersion: gl.getParameter(gl.SHADING_LANGUAGE_VERSION),
		antialiasing: !!(gl.getContextAttributes() || {}).antialias,
		extensions: gl.getSupportedExtensions() || [],
		maxTextureSize: gl.getParameter(gl.MAX_TEXTURE_SIZE),
		maxCubeMapTextureSize: gl.getParameter(gl.MAX_CUBE_MAP_TEXTURE_SIZE),
		maxRenderbufferSize: gl.getParameter(gl.MAX_RENDERBUFFER_SIZE),
		maxViewportDims: arr(gl.getParameter(gl.MAX_VIEWPORT_DIMS)),
		aliasedLineWidthRange: arr(gl.getParameter(gl.ALIASED_LINE_WIDTH_RANGE)),
		aliasedPointSizeRange: arr(gl.getParameter(gl.ALIASED_POINT_SIZE_RANGE)),
		maxAnisotropy: aniso ? gl.getParameter(aniso.MAX_TEXTURE_MAX_ANISOTROPY_EXT) : 0,
		maxTextureImageUnits: gl.getParameter(gl.MAX_TEXTURE_IMAGE_UNITS),
		maxVertexTextureImageUnits: gl.getParameter(gl.MAX_VERTEX_TEXTURE_IMAGE_UNITS),
		maxCombinedTextureImageUnits: gl.getParameter(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS),
		maxFragmentUniformVectors: gl.getParameter(gl.MAX_FRAGMENT_UNIFORM_VECTORS),
		maxVertexUniformVectors: gl.getParameter(gl.MAX_VERTEX_UNIFORM_VECTORS),
		maxVertexAttribs: gl.getParameter(gl.MAX_VERTEX_ATTRIBS),
		maxVaryingVectors: gl.getParameter(gl.MAX_VARYING_VECTORS),
		precision: precision,
	};
}`

const localFontsJS = `async () => {
	if (typeof window.queryLocalFonts !== 'function') return null;
	const fonts = await window.queryLocalFonts();
	return Array.from(new Set(fonts.map(f => f.family)));
}`

// The measurement span and audio graph live on window under these names
// between Open and Close.
const (
	measurerOpenJS = `(id) => {
	const span = document.createElement('span');
	span.id = id;
	span.style.position = 'absolute';
	span.style.left = '-9999px';
	span.style.fontSize = '72px';
	span.style.lineHeight = 'normal';
	span.textContent = 'mmmmmmmmmmlli';
	document.body.appendChild(span);
	return true;
}`
	measureJS = `(id, family) => {
	const span = document.getElementById(id);
	if (!span) throw new Error('measurement element removed');
	span.style.fontFamily = family;
	return {width: span.offsetWidth, height: span.offsetHeight};
}`
	measurerCloseJS = `(id) => {
	const span = document.getElementById(id);
	if (span) span.remove();
	return true;
}`

	audioOpenJS = `(id) => {
	const Ctor = window.AudioContext || window.webkitAudioContext;
	if (!Ctor) return null;
	const ctx = new Ctor();
	const osc = ctx.createOscillator();
	const analyser = ctx.createAnalyser();
	const gain = ctx.createGain();
	gain.gain.value = 0;
	osc.type = 'triangle';
	osc.frequency.value = 10000;
	osc.connect(analyser);
	analyser.connect(gain);
	gain.connect(ctx.destination);
	osc.start(0);
	window[id] = {ctx: ctx, osc: osc, analyser: analyser};
	const d = ctx.destination;
	return {
		sampleRate: ctx.sampleRate, state: ctx.state,
		maxChannelCount: d.maxChannelCount,
		numberOfInputs: d.numberOfInputs, numberOfOutputs: d.numberOfOutputs,
		channelCount: d.channelCount, channelCountMode: d.channelCountMode,
		channelInterpretation: d.channelInterpretation,
	};
}`
	frequencyJS = `(id, bins) => {
	const g = window[id];
	if (!g) throw new Error('audio graph closed');
	const data = new Uint8Array(g.analyser.frequencyBinCount);
	g.analyser.getByteFrequencyData(data);
	return Array.from(data.slice(0, bins));
}`
	audioCloseJS = `async (id) => {
	const g = window[id];
	if (!g) return true;
	delete window[id];
	try { g.osc.stop(); } catch (e) {}
	await g.ctx.close();
	return true;
}`
)

const connectionJS = `() => {
	const c = navigator.connection || navigator.mozConnection || navigator.webkitConnection;
	if (!c) return null;
	const fin = v => Number.isFinite(v) ? v : null;
	return {
		effectiveType: c.effectiveType || '', type: c.type || '',
		downlink: fin(c.downlink), downlinkMax: fin(c.downlinkMax),
		rtt: fin(c.rtt), saveData: !!c.saveData,
	};
}`

const storageEstimateJS = `async () => {
	if (!navigator.storage || !navigator.storage.estimate) return null;
	const e = await navigator.storage.estimate();
	return {usage: Math.floor(e.usage || 0), quota: Math.floor(e.quota || 0)};
}`

const storagePersistedJS = `async () => {
	if (!navigator.storage || !navigator.storage.persisted) return null;
	return await navigator.storage.persisted();
}`

// Infinite charging times are sent as -1.
const batteryJS = `async () => {
	if (typeof navigator.getBattery !== 'function') return null;
	const b = await navigator.getBattery();
	const t = v => Number.isFinite(v) ? v : -1;
	return {charging: b.charging, chargingTime: t(b.chargingTime), dischargingTime: t(b.dischargingTime), level: b.level};
}`

const canPlayTypeJS = `(mime) => {
	const kind = mime.startsWith('audio/') ? 'audio' : 'video';
	return document.createElement(kind).canPlayType(mime) !== '';
}`

const mediaDevicesJS = `async () => {
	if (!navigator.mediaDevices || !navigator.mediaDevices.enumerateDevices) return null;
	const devices = await navigator.mediaDevices.enumerateDevices();
	return devices.map(d => ({kind: d.kind}));
}`

const permissionJS = `async (name) => {
	if (!navigator.permissions || !navigator.permissions.query) return null;
	const status = await navigator.permissions.query({name: name});
	return status.state;
}`
