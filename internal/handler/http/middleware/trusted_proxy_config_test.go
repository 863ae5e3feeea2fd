package middleware

import (
	"net/netip"
	"testing"
)

func TestLoadTrustedProxyConfig(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		config, err := LoadTrustedProxyConfig()
		if err != nil {
			t.Fatalf("LoadTrustedProxyConfig err=%v", err)
		}
		if config.Enabled {
			t.Fatal("want disabled when RATE_LIMIT_TRUST_PROXY is unset")
		}
	})

	t.Run("single IP becomes a host prefix", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")
		t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.1")

		config, err := LoadTrustedProxyConfig()
		if err != nil {
			t.Fatalf("LoadTrustedProxyConfig err=%v", err)
		}
		want := netip.MustParsePrefix("10.0.0.1/32")
		if len(config.AllowedCIDRs) != 1 || config.AllowedCIDRs[0] != want {
			t.Errorf("AllowedCIDRs = %v, want [%v]", config.AllowedCIDRs, want)
		}
	})

	t.Run("mixed CIDRs and IPs with empty elements", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")
		t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8, , 2001:db8::1,172.16.0.0/12")

		config, err := LoadTrustedProxyConfig()
		if err != nil {
			t.Fatalf("LoadTrustedProxyConfig err=%v", err)
		}
		if len(config.AllowedCIDRs) != 3 {
			t.Errorf("AllowedCIDRs length = %d, want 3", len(config.AllowedCIDRs))
		}
		// IPv6 単一アドレスは /128 になる
		if config.AllowedCIDRs[1] != netip.MustParsePrefix("2001:db8::1/128") {
			t.Errorf("IPv6 entry = %v, want /128 prefix", config.AllowedCIDRs[1])
		}
	})

	t.Run("enabled without proxy list is rejected", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")
		t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "  ")

		if _, err := LoadTrustedProxyConfig(); err == nil {
			t.Fatal("want error when enabled with empty proxy list")
		}
	})

	t.Run("invalid CIDR is rejected", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")
		t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8,not-a-cidr")

		if _, err := LoadTrustedProxyConfig(); err == nil {
			t.Fatal("want error for invalid CIDR entry")
		}
	})
}
