// Package auth exports browser cookies for platforms that need a logged-in session.
//
// A visible Chrome instance is driven through go-rod with a stealth page.
// The user logs in by hand; when the browser is closed the cookies of the
// platform domains are written as a Netscape cookie file that yt-dlp reads
// through --cookies.
package auth
