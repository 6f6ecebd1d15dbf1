// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// csp is the content security policy shared by the storefront and the
// admin panel. Product photos and slides load from the object-storage
// bucket, so img-src allows any https origin; the 2FA enrollment page
// embeds its QR code as a data URI. Everything else is same-origin —
// the templates carry no inline scripts or styles.
const csp = "default-src 'self'; img-src 'self' https: data:; form-action 'self'; frame-ancestors 'self'"

// SecureHeaders adds the security headers every FerreCMS response
// carries, public and admin alike.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("Content-Security-Policy", csp)

		// Prevent the browser from MIME-sniffing the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		// Prevent embedding in iframes from other origins (clickjacking).
		h.Set("X-Frame-Options", "SAMEORIGIN")

		// Disable the legacy XSS filter; the CSP above covers it.
		h.Set("X-XSS-Protection", "0")

		// Control what information is sent in the Referer header.
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		h.Set("Permissions-Policy", "interest-cohort=()")

		next.ServeHTTP(w, r)
	})
}
