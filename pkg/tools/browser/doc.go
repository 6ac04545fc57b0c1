// Package browser provides one-shot web browser automation through Playwright.
//
// Four operations are offered, each as a method on Executor and as a tool:
//
//   - Visit (browser_visit): load a page and read its title, text, HTML,
//     a script result and a full-page screenshot
//   - FillForm (browser_fill_form): set form fields by selector and submit
//   - ExtractData (browser_extract_data): read text and attributes by selector
//   - MonitorChanges (browser_monitor_changes): poll one element for changes
//     until a time budget is spent
//
// # Session Lifecycle
//
// Nothing is kept between calls. Every operation:
//
//  1. checks the URL against the configured URLPolicy
//  2. launches a browser and opens one context (Session.EnsureSession)
//  3. opens one page and runs its steps
//  4. closes the page, then the context and browser (Session.Teardown)
//
// Step 4 runs on every exit path. The Playwright driver process itself is
// shared by PlaywrightLauncher and stopped with Shutdown.
//
// # Results
//
// Operations never return Go errors for page faults. An OperationResult
// carries either a payload or an Error message such as
//
//	ElementNotFound: fill_form "#email": timeout exceeded: ...
//
// whose prefix is the failure Kind. ExtractData reports a string for a
// selector matching exactly one element and a list otherwise, including an
// empty list for no matches.
//
// # Monitoring
//
// MonitorChanges reads a baseline, then sleeps, re-reads and compares every
// interval until max_time seconds have elapsed. Failed reads are recorded as
// change records with an error and polling continues. There is no way to
// stop a monitor early; the caller bounds it with max_time.
//
// # Testing
//
// The engine talks to the browser only through the Launcher, Browser,
// BrowserContext, Page and Element interfaces, so it can be driven by an
// in-memory fake. Clock makes the monitor's timing deterministic.
package browser
