// Package router maps URL paths to the application's closed set of routes.
//
// The router provides:
//   - A closed Route type (Home, PostList, Post, AuthorList, Author,
//     Settings, NotFound) and PathOf, its inverse
//   - Path canonicalization before matching
//   - A radix tree with typed parameters (":id:uint64") and nested scopes
//   - A Navigator that tracks navigation generations
//
// # Route Table
//
//	/                   Home
//	/posts              PostList
//	/posts/:id          Post        (id must be an unsigned decimal)
//	/authors            AuthorList
//	/authors/:id        Author
//	/settings/profile   Settings{Profile}
//	/settings/friends   Settings{Friends}
//	/settings/theme     Settings{Theme}
//	/404 and the rest   NotFound
//
// Unknown paths below /settings resolve to NotFound with RedirectTo set
// to "/404", so the host can replace the URL.
//
// # Usage
//
//	route := router.Resolve("/posts/7") // router.Post{ID: 7}
//	path := router.PathOf(route)        // "/posts/7"
//
// Resolve is pure and never fails. It does not touch history; hosts feed
// paths in through a History and decide when resolution happens.
package router
