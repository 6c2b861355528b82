// Package router wires every HTTP endpoint to its handler and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Gachenge/school-portal/internal/authz"
	"github.com/Gachenge/school-portal/internal/handler"
	"github.com/Gachenge/school-portal/internal/middleware"
)

// Handlers bundles every handler the router needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Library  *handler.LibraryHandler
	Students *handler.StudentHandler
	Teachers *handler.TeacherHandler
	Subjects *handler.SubjectHandler
	Blogs    *handler.BlogHandler
	Comments *handler.CommentHandler
}

// Register wires all routes.  The oauth group and the health check are
// public; everything else sits behind CookieAuth plus a per-operation role
// check.
func Register(e *echo.Echo, h Handlers, jwtSecret string, users middleware.UserSource) {
	e.Use(echomw.CORS())

	e.GET("/healthz", handler.Health)

	oauth := e.Group("/api/oauth")
	oauth.POST("/sign_up", h.Auth.SignUp)
	oauth.POST("/login", h.Auth.Login)
	oauth.POST("/refresh", h.Auth.Refresh)
	oauth.POST("/logout", h.Auth.Logout)
	oauth.GET("/verify_email/:token", h.Auth.VerifyEmail)
	oauth.POST("/forgot_password", h.Auth.ForgotPassword)

	auth := middleware.CookieAuth(jwtSecret, users)
	op := middleware.RequireOp

	userg := e.Group("/api/users", auth)
	userg.GET("", h.Users.List, op(authz.OpUserList))
	userg.GET("/:id", h.Users.Get, op(authz.OpUserGet))
	userg.PATCH("/:id", h.Users.Update, op(authz.OpUserEdit))
	userg.DELETE("/:id", h.Users.Delete, op(authz.OpUserDelete))

	lib := e.Group("/api/library", auth)
	lib.GET("/books", h.Library.ListBooks, op(authz.OpBookList))
	lib.POST("/books", h.Library.CreateBook, op(authz.OpBookCreate))
	lib.GET("/books/:id", h.Library.GetBook, op(authz.OpBookGet))
	lib.PATCH("/books/:id", h.Library.UpdateBook, op(authz.OpBookEdit))
	lib.DELETE("/books/:id", h.Library.DeleteBook, op(authz.OpBookDelete))
	lib.PATCH("/book/borrow", h.Library.Borrow, op(authz.OpBorrow))
	lib.PATCH("/book/return", h.Library.Return, op(authz.OpReturn))
	lib.GET("/members", h.Library.ListMembers, op(authz.OpMemberList))
	lib.POST("/members", h.Library.CreateMember, op(authz.OpMemberCreate))
	lib.GET("/members/:id", h.Library.GetMember, op(authz.OpMemberGet))
	lib.DELETE("/members/:id", h.Library.DeleteMember, op(authz.OpMemberDelete))

	students := e.Group("/api/students", auth)
	students.GET("", h.Students.List, op(authz.OpStudentList))
	students.POST("", h.Students.Create, op(authz.OpStudentCreate))
	students.GET("/grades", h.Students.Grades, op(authz.OpStudentSeeGrades))
	students.GET("/:id", h.Students.Get, op(authz.OpStudentGet))
	students.POST("/subject", h.Students.Enroll, op(authz.OpStudentEnroll))
	students.PATCH("/subject", h.Students.Unenroll, op(authz.OpStudentUnenroll))

	teachers := e.Group("/api/teachers", auth)
	teachers.GET("", h.Teachers.List, op(authz.OpTeacherList))
	teachers.POST("", h.Teachers.Create, op(authz.OpTeacherCreate))
	teachers.GET("/:id", h.Teachers.Get, op(authz.OpTeacherGet))
	teachers.POST("/subjects", h.Teachers.AssignSubject, op(authz.OpTeacherAssign))
	teachers.PATCH("/subjects", h.Teachers.UnassignSubject, op(authz.OpTeacherUnassign))
	teachers.POST("/grade", h.Teachers.AddGrade, op(authz.OpGradeCreate))
	teachers.PATCH("/grade", h.Teachers.DeleteGrade, op(authz.OpGradeDelete))

	subjects := e.Group("/api/subjects", auth)
	subjects.GET("", h.Subjects.List, op(authz.OpSubjectList))
	subjects.POST("", h.Subjects.Create, op(authz.OpSubjectCreate))
	subjects.GET("/:id", h.Subjects.Get, op(authz.OpSubjectGet))
	subjects.PATCH("/:id", h.Subjects.Update, op(authz.OpSubjectEdit))
	subjects.DELETE("/:id", h.Subjects.Delete, op(authz.OpSubjectDelete))

	blog := e.Group("/api/blog", auth)
	blog.POST("", h.Blogs.Create, op(authz.OpBlogCreate))
	blog.GET("", h.Blogs.List, op(authz.OpBlogList))
	blog.GET("/:id", h.Blogs.Get, op(authz.OpBlogGet))
	blog.PATCH("/:id", h.Blogs.Update, op(authz.OpBlogEdit))
	blog.DELETE("/:id", h.Blogs.Delete, op(authz.OpBlogDelete))

	post := e.Group("/api/post", auth)
	post.POST("/:id/comment", h.Comments.Create, op(authz.OpCommentCreate))
	post.GET("/:id/comment", h.Comments.ListByBlog, op(authz.OpCommentList))
	post.GET("/:id", h.Comments.Get, op(authz.OpCommentGet))
	post.PATCH("/:id", h.Comments.Update, op(authz.OpCommentEdit))
	post.DELETE("/:id", h.Comments.Delete, op(authz.OpCommentDelete))
}
