// Package routecfg loads route tables from YAML or CUE files and registers
// them on a Context.
//
// A table names each route's path, the component rendering its body, and
// optionally a head component, an action, a title, and static props.
// Components are looked up by name in a Registry the application fills.
//
// YAML tables list routes in order:
//
//	routes:
//	  - name: index
//	    path: /
//	    component: index
//	    title: Home
//	errors:
//	  - status: 404
//	    component: not-found
//
// CUE tables key routes by name, in declaration order:
//
//	route: index: {path: "/", component: "index", title: "Home"}
//	error: NotFound: {component: "not-found"}
//
// Error routes are addressed by status code or by status name. Both forms
// load to the same Table.
package routecfg
