package code

// 通用成功码
var (
	Success           = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	SuccessNoteCreate = NewSuss(201, lang{en: "Note saved successfully", zh_cn: "笔记保存成功"})
	SuccessNoteUpdate = NewSuss(202, lang{en: "Note updated successfully", zh_cn: "笔记更新成功"})
	SuccessNoteDelete = NewSuss(203, lang{en: "Note deleted successfully", zh_cn: "笔记删除成功"})
)

// 服务级错误码
var (
	ErrorServerInternal   = NewError(10000000, lang{en: "Server internal error", zh_cn: "服务内部错误"})
	ErrorInvalidParams    = NewError(10000001, lang{en: "Invalid params", zh_cn: "入参错误"})
	ErrorNotFoundAPI      = NewError(10000002, lang{en: "API not found", zh_cn: "找不到对应接口"})
	ErrorTooManyRequests  = NewError(10000003, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorDBQuery          = NewError(10000004, lang{en: "Database query error", zh_cn: "数据库查询错误"})
	ErrorRequestTimeout   = NewError(10000005, lang{en: "Request timeout", zh_cn: "请求超时"})
	ErrorInvalidWSMessage = NewError(10000006, lang{en: "Invalid websocket message", zh_cn: "非法的 WebSocket 消息"})
)

// 用户与认证错误码
var (
	ErrorNotUserAuthToken        = NewError(10010000, lang{en: "Auth token is missing", zh_cn: "缺少用户认证令牌"})
	ErrorInvalidUserAuthToken    = NewError(10010001, lang{en: "Auth token is invalid or expired", zh_cn: "用户认证令牌无效或已过期"})
	ErrorTokenGenerate           = NewError(10010002, lang{en: "Failed to generate auth token", zh_cn: "认证令牌生成失败"})
	ErrorUserRegister            = NewError(10010003, lang{en: "Failed to register user", zh_cn: "用户注册失败"})
	ErrorUserRegisterIsDisable   = NewError(10010004, lang{en: "Registration is disabled", zh_cn: "注册功能已关闭"})
	ErrorUserEmailAlreadyExists  = NewError(10010005, lang{en: "Email is already registered", zh_cn: "邮箱已被注册"})
	ErrorUserEmailNotValid       = NewError(10010006, lang{en: "Email format is invalid", zh_cn: "邮箱格式不正确"})
	ErrorUserPasswordNotMatch    = NewError(10010007, lang{en: "Passwords do not match", zh_cn: "两次输入的密码不一致"})
	ErrorUserLoginPasswordFailed = NewError(10010008, lang{en: "Email or password is incorrect", zh_cn: "邮箱或密码错误"})
	ErrorUserNotFound            = NewError(10010009, lang{en: "User not found", zh_cn: "用户不存在"})
	ErrorPasswordNotValid        = NewError(10010010, lang{en: "Password is invalid", zh_cn: "密码不合法"})
)

// 笔记错误码
var (
	ErrorNoteFieldsEmpty = NewError(10020000, lang{en: "Title and content cannot be empty", zh_cn: "标题和内容不能为空"})
	ErrorNoteNotFound    = NewError(10020001, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteCreate      = NewError(10020002, lang{en: "Failed to save note", zh_cn: "笔记保存失败"})
	ErrorNoteUpdate      = NewError(10020003, lang{en: "Failed to update note", zh_cn: "笔记更新失败"})
	ErrorNoteDelete      = NewError(10020004, lang{en: "Failed to delete note", zh_cn: "笔记删除失败"})
	ErrorNoteList        = NewError(10020005, lang{en: "Failed to load notes", zh_cn: "笔记列表加载失败"})
)
