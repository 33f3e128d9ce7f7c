package fingerprint

import (
	"context"
	"errors"
	"slices"
)

var basicKeys = []Key{
	KeyUserAgent, KeyPlatform, KeyCPUClass, KeyDoNotTrack, KeyLanguages,
	KeyOSCPU, KeyVendor, KeyVendorSub, KeyProductSub, KeyCookieEnabled,
	KeyAppName, KeyAppVersion, KeyAppCodeName, KeyBuildID, KeyProduct,
	KeyUserAgentData,
}

// highEntropyHints are the client hints requested by the user-agent enrichment.
var highEntropyHints = []string{
	"architecture",
	"bitness",
	"model",
	"platformVersion",
	"fullVersionList",
}

// UserAgentData is the value recorded under [KeyUserAgentData].
// HighEntropy is nil when the host cannot resolve high-entropy hints.
type UserAgentData struct {
	Brands      []Brand  `json:"brands"`
	Mobile      bool     `json:"mobile"`
	HighEntropy *Outcome `json:"highEntropy,omitempty"`
}

func collectBasic(ctx context.Context, h Host, w *slotWriter) error {
	nav, err := h.Navigator(ctx)
	if err != nil {
		if !isUnavailable(err) {
			return err
		}
		for _, k := range basicKeys {
			w.Absent(k, nil)
		}

		return nil
	}

	putString(w, KeyUserAgent, nav.UserAgent)
	putString(w, KeyPlatform, nav.Platform)
	putString(w, KeyCPUClass, nav.CPUClass)
	putString(w, KeyDoNotTrack, nav.DoNotTrack)
	putString(w, KeyOSCPU, nav.OSCPU)
	putString(w, KeyVendor, nav.Vendor)
	putString(w, KeyVendorSub, nav.VendorSub)
	putString(w, KeyProductSub, nav.ProductSub)
	putString(w, KeyAppName, nav.AppName)
	putString(w, KeyAppVersion, nav.AppVersion)
	putString(w, KeyAppCodeName, nav.AppCodeName)
	putString(w, KeyBuildID, nav.BuildID)
	putString(w, KeyProduct, nav.Product)
	w.Put(KeyCookieEnabled, nav.CookieEnabled)

	switch {
	case len(nav.Languages) > 0:
		w.Put(KeyLanguages, slices.Clone(nav.Languages))
	case nav.Language != "":
		w.Put(KeyLanguages, []string{nav.Language})
	default:
		w.Absent(KeyLanguages, nil)
	}

	if nav.UserAgentData == nil {
		w.Absent(KeyUserAgentData, nil)
		return nil
	}

	data := &UserAgentData{
		Brands: slices.Clone(nav.UserAgentData.Brands),
		Mobile: nav.UserAgentData.Mobile,
	}
	if nav.UserAgentData.HighEntropy {
		w.Enrich(ctx, func(ctx context.Context) (any, error) {
			return h.HighEntropyValues(ctx, highEntropyHints)
		}, func(o Outcome) {
			data.HighEntropy = &o
		})
	}
	w.Put(KeyUserAgentData, data)

	return nil
}

func putString(w *slotWriter, k Key, v string) {
	if v == "" {
		w.Absent(k, nil)
		return
	}

	w.Put(k, v)
}

func isUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// orUnavailable returns v, or the unavailable sentinel when v is the zero value.
func orUnavailable[T comparable](v T) any {
	var zero T
	if v == zero {
		return Unavailable
	}

	return v
}

// namedCapability binds a record field name to the capability answering it.
type namedCapability struct {
	name string
	cap  Capability
}

// presence evaluates each capability independently.
func presence(h Host, list []namedCapability) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, nc := range list {
		out[nc.name] = h.Has(nc.cap)
	}

	return out
}
