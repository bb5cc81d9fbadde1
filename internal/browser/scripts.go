package browser

import "github.com/hyperifyio/termsense/internal/page"

// The page functions below run inside the browser. They are kept in sync
// with the keyword lists in package page.

const textScript = `(limit) => {
	const content = document.body ? document.body.innerText : "";
	return content.slice(0, limit);
}`

const policyLinksScript = `() => {
	const keywords = ["terms", "privacy", "policy", "conditions"];
	const links = [];
	for (const a of document.querySelectorAll("a")) {
		const text = (a.innerText || a.textContent || "").toLowerCase();
		const href = (a.href || "").toLowerCase();
		if (!a.href) continue;
		if (keywords.some((k) => text.includes(k) || href.includes(k))) {
			links.push(a.href);
		}
	}
	return links;
}`

const agreementPredicate = `(el) => {
	const text = el.textContent?.toLowerCase() || el.value?.toLowerCase() || "";
	return text.includes("agree") || text.includes("accept") || text.includes("consent");
}`

const agreementSelector = `'button, input[type="submit"], input[type="checkbox"]'`

const detectAgreementScript = `() => {
	const isAgreement = ` + agreementPredicate + `;
	return Array.from(document.querySelectorAll(` + agreementSelector + `)).some(isAgreement);
}`

const invokeAgreementScript = `() => {
	const isAgreement = ` + agreementPredicate + `;
	for (const el of document.querySelectorAll(` + agreementSelector + `)) {
		if (isAgreement(el)) {
			if (el.type === "checkbox") el.checked = true;
			el.click();
			return true;
		}
	}
	return false;
}`

var scripts = map[page.Script]string{
	page.ScriptText:            textScript,
	page.ScriptPolicyLinks:     policyLinksScript,
	page.ScriptDetectAgreement: detectAgreementScript,
	page.ScriptInvokeAgreement: invokeAgreementScript,
}
