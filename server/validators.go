package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	// DefaultAlias is the header or form field the token validators read.
	DefaultAlias = "token"

	// DefaultFuncAlias is the key the func validators read.
	DefaultFuncAlias = "user_id"

	// ContextKeyAuthorized is set to true once a validator accepts a request.
	ContextKeyAuthorized = "Authorized"

	invalidCredentials = "Invalid authentication credentials"
)

// tokenSet matches tokens in constant time. Empty keys never match.
type tokenSet []string

func newTokenSet(keys []string) tokenSet {
	out := make(tokenSet, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (s tokenSet) Contains(token string) bool {
	if token == "" {
		return false
	}
	found := 0
	for _, k := range s {
		found |= subtle.ConstantTimeCompare([]byte(k), []byte(token))
	}
	return found == 1
}

// HeaderValidator accepts requests whose alias header equals key.
func HeaderValidator(key, alias string) gin.HandlerFunc {
	return MultiHeaderValidator([]string{key}, alias)
}

// MultiHeaderValidator accepts requests whose alias header is one of keys.
func MultiHeaderValidator(keys []string, alias string) gin.HandlerFunc {
	alias = orDefault(alias, DefaultAlias)
	set := newTokenSet(keys)
	return func(c *gin.Context) {
		verify(c, alias, set, c.GetHeader(alias))
	}
}

// FormValidator accepts requests whose alias form field equals key.
func FormValidator(key, alias string) gin.HandlerFunc {
	return MultiFormValidator([]string{key}, alias)
}

// MultiFormValidator accepts requests whose alias form field is one of keys.
func MultiFormValidator(keys []string, alias string) gin.HandlerFunc {
	alias = orDefault(alias, DefaultAlias)
	set := newTokenSet(keys)
	return func(c *gin.Context) {
		verify(c, alias, set, c.PostForm(alias))
	}
}

// FuncBodyValidator reads dataKey from the JSON body, maps it through fn
// and accepts the request when the result is one of keys. dataKey defaults
// to alias, which defaults to "user_id". The body stays readable for later
// handlers through c.ShouldBindBodyWith.
func FuncBodyValidator(fn func(string) string, keys []string, alias, dataKey string) gin.HandlerFunc {
	alias = orDefault(alias, DefaultFuncAlias)
	dataKey = orDefault(dataKey, alias)
	set := newTokenSet(keys)
	return func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			reject(c, alias, "body is not a JSON object")
			return
		}
		verify(c, alias, set, mapped(fn, body[dataKey]))
	}
}

// FuncRequestValidator is FuncBodyValidator for form-encoded requests.
func FuncRequestValidator(fn func(string) string, keys []string, alias, dataKey string) gin.HandlerFunc {
	alias = orDefault(alias, DefaultFuncAlias)
	dataKey = orDefault(dataKey, alias)
	set := newTokenSet(keys)
	return func(c *gin.Context) {
		v, ok := c.GetPostForm(dataKey)
		if !ok {
			reject(c, alias, "missing "+dataKey)
			return
		}
		verify(c, alias, set, mapped(fn, v))
	}
}

func mapped(fn func(string) string, v interface{}) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	default:
		s = fmt.Sprint(t)
	}
	if s == "" || fn == nil {
		return s
	}
	return fn(s)
}

func verify(c *gin.Context, alias string, set tokenSet, token string) {
	if token == "" {
		reject(c, alias, "missing credentials")
		return
	}
	if !set.Contains(token) {
		reject(c, alias, "credentials did not match")
		return
	}
	c.Set(ContextKeyAuthorized, true)
	c.Next()
}

func reject(c *gin.Context, alias, reason string) {
	_ = c.Error(&AuthorizationError{Alias: alias, Reason: reason})
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": invalidCredentials})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
